package sync

import (
	"context"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/syncapi"
)

// Coordinator drives sync cycles against the HRIS server. At most one cycle
// runs at a time; concurrent triggers collapse into the in-flight cycle. The
// three categories are pushed independently so a failure in one never holds
// the others hostage, and the observable state is replaced as a whole object
// after every transition.
type Coordinator struct {
	attendanceRepo attendance.Repository
	profileRepo    profile.Repository
	settingsRepo   settings.Repository
	api            *syncapi.Client
	hub            *sse.Hub
	logger         *slog.Logger

	mu          stdsync.Mutex
	state       syncdomain.State
	running     bool
	cancelCycle context.CancelFunc

	now func() time.Time
}

func NewCoordinator(
	attendanceRepo attendance.Repository,
	profileRepo profile.Repository,
	settingsRepo settings.Repository,
	api *syncapi.Client,
	hub *sse.Hub,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		attendanceRepo: attendanceRepo,
		profileRepo:    profileRepo,
		settingsRepo:   settingsRepo,
		api:            api,
		hub:            hub,
		logger:         logger,
		now:            time.Now,
	}
}

// TriggerSync starts a cycle in the background unless one is already in
// flight. Used by the auto-sync job and the manual sync endpoint, both of
// which only care that a cycle is running, not about its outcome.
func (c *Coordinator) TriggerSync(email, userID string) bool {
	if !c.begin() {
		return false
	}
	go func() {
		if _, err := c.run(context.Background(), email, userID); err != nil {
			c.logger.Warn("background sync cycle failed", "error", err)
		}
	}()
	return true
}

// SyncAll runs one full cycle and returns the resulting state. Returns
// ErrSyncInFlight without touching anything when a cycle is already running.
func (c *Coordinator) SyncAll(ctx context.Context, email, userID string) (syncdomain.State, error) {
	if !c.begin() {
		return c.State(), syncdomain.ErrSyncInFlight
	}
	return c.run(ctx, email, userID)
}

// State returns a snapshot of the current sync state.
func (c *Coordinator) State() syncdomain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cancel aborts the in-flight cycle, if any. Called on logout before the
// local store is cleared so a stale cycle cannot write into it.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelCycle != nil {
		c.cancelCycle()
	}
}

// begin claims the single-flight slot. The claim and the isSyncing flag flip
// together under one lock so observers never see a running cycle with
// isSyncing false.
func (c *Coordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.state.IsSyncing = true
	c.publish(c.state)
	return true
}

func (c *Coordinator) run(ctx context.Context, email, userID string) (syncdomain.State, error) {
	cycleCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelCycle = cancel
	c.mu.Unlock()
	defer cancel()

	log := c.logger.With("email", email, "user_id", userID)
	log.Info("sync cycle started")

	var (
		cycleErrs  []syncdomain.SyncError
		anySuccess bool
		authErr    error
	)

	categories := []struct {
		name syncdomain.Category
		fn   func(context.Context, string) ([]syncdomain.SyncError, error)
	}{
		{syncdomain.CategoryProfile, c.syncProfile},
		{syncdomain.CategoryAttendance, c.syncAttendance},
		{syncdomain.CategorySettings, c.syncSettings},
	}

	for _, cat := range categories {
		errs, err := cat.fn(cycleCtx, email)
		cycleErrs = append(cycleErrs, errs...)
		if err == nil {
			anySuccess = true
			continue
		}
		log.Warn("sync category failed", "category", string(cat.name), "error", err)
		cycleErrs = append(cycleErrs, c.newSyncError(cat.name, err.Error()))
		if errors.Is(err, syncdomain.ErrAuth) {
			// The token is bad for every category; stop the cycle and let
			// the caller force re-authentication. Queued items stay put.
			authErr = err
			break
		}
	}

	unsynced := c.collectUnsynced(context.Background())

	c.mu.Lock()
	for _, e := range cycleErrs {
		c.state.SyncErrors = syncdomain.AppendError(c.state.SyncErrors, e)
	}
	if anySuccess {
		t := c.now()
		c.state.LastSyncAt = &t
	}
	c.state.Unsynced = unsynced
	c.state.IsSyncing = false
	c.running = false
	c.cancelCycle = nil
	final := c.state
	c.publish(final)
	c.mu.Unlock()

	log.Info("sync cycle finished",
		"errors", len(cycleErrs),
		"remaining", unsynced.Count(),
	)
	return final, authErr
}

// syncProfile pushes queued field mutations and runs the server's response
// through per-field conflict resolution. When nothing is queued and no local
// view exists yet, it pulls the server's profile instead (first run after
// login).
func (c *Coordinator) syncProfile(ctx context.Context, email string) ([]syncdomain.SyncError, error) {
	muts, err := c.profileRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, err
	}

	if len(muts) == 0 {
		return nil, c.pullProfileIfMissing(ctx, email)
	}

	var (
		dropped []syncdomain.SyncError
		fields  []syncapi.ProfileField
		pushed  []profile.FieldMutation
	)
	for _, m := range muts {
		if !profile.IsEditableField(m.Property) {
			// Should have been rejected at write time; drop rather than
			// retry forever.
			if err := c.profileRepo.DeleteMutation(ctx, m.Property, m.UpdatedAt); err != nil {
				return dropped, err
			}
			dropped = append(dropped, c.newSyncError(syncdomain.CategoryProfile,
				"dropped unknown profile field "+m.Property))
			continue
		}
		fields = append(fields, syncapi.ProfileField{
			Property:  m.Property,
			Value:     m.Value,
			UpdatedAt: m.UpdatedAt,
		})
		pushed = append(pushed, m)
	}
	if len(fields) == 0 {
		return dropped, nil
	}

	resp, err := c.api.PushProfile(ctx, syncapi.PushProfileRequest{Email: email, Fields: fields})
	if err != nil {
		if !errors.Is(err, syncdomain.ErrValidation) {
			return dropped, err
		}
		// Profile edits are validated before queueing, so a server-side
		// rejection means the payload will never be accepted. Drop it so the
		// queue does not wedge; the supersede guard keeps any newer
		// in-flight edit queued.
		for _, m := range pushed {
			if derr := c.profileRepo.DeleteMutation(ctx, m.Property, m.UpdatedAt); derr != nil {
				return dropped, derr
			}
		}
		dropped = append(dropped, c.newSyncError(syncdomain.CategoryProfile, err.Error()))
		return dropped, nil
	}

	if err := c.applyProfileResponse(ctx, email, resp, pushed); err != nil {
		return dropped, err
	}
	return dropped, nil
}

// applyProfileResponse merges the server's post-push view with whatever is
// still queued (a field edited while the push was in flight has a newer
// updatedAt than the server's lastSyncedAt and keeps its local value), saves
// the merged view, and dequeues the pushed fields. DeleteMutation's
// timestamp guard leaves superseded entries queued for the next cycle.
func (c *Coordinator) applyProfileResponse(ctx context.Context, email string, resp syncapi.PushProfileResponse, pushed []profile.FieldMutation) error {
	view, err := c.profileRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			return err
		}
		view = profile.Profile{Email: email}
	}

	remote := view
	remote.Email = email
	for _, f := range resp.Fields {
		remote.SetField(f.Property, f.Value)
	}
	remote.LastSyncedAt = resp.LastSyncedAt

	stillQueued, err := c.profileRepo.ListUnsynced(ctx)
	if err != nil {
		return err
	}

	merged, requeued := MergeProfile(remote, stillQueued)
	if err := c.profileRepo.Save(ctx, merged); err != nil {
		return err
	}
	if len(requeued) > 0 {
		c.logger.Debug("profile fields kept local after merge", "count", len(requeued))
	}

	for _, m := range pushed {
		if err := c.profileRepo.DeleteMutation(ctx, m.Property, m.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) pullProfileIfMissing(ctx context.Context, email string) error {
	_, err := c.profileRepo.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, profile.ErrProfileNotFound) {
		return err
	}

	remote, err := c.api.FetchProfile(ctx, email)
	if err != nil {
		return err
	}
	return c.profileRepo.Save(ctx, profile.Profile{
		Email:           remote.Email,
		FirstName:       remote.FirstName,
		LastName:        remote.LastName,
		DateOfBirth:     remote.DateOfBirth,
		EmploymentType:  remote.EmploymentType,
		Designation:     remote.Designation,
		ProfilePhotoURL: remote.ProfilePhotoURL,
		LastUpdatedAt:   remote.LastSyncedAt,
		LastSyncedAt:    remote.LastSyncedAt,
	})
}

// syncAttendance pushes unsynced punch records and marks the acked ones.
// MarkSynced ignores already synced rows, so a duplicate ack after a timed
// out push is harmless. A batch-level validation rejection falls back to
// per-record pushes so one malformed record cannot wedge the whole queue.
func (c *Coordinator) syncAttendance(ctx context.Context, _ string) ([]syncdomain.SyncError, error) {
	recs, err := c.attendanceRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	payloads := make([]syncapi.AttendancePayload, 0, len(recs))
	for _, r := range recs {
		payloads = append(payloads, attendancePayload(r))
	}

	resp, err := c.api.PushAttendance(ctx, syncapi.PushAttendanceRequest{Records: payloads})
	if err != nil {
		if !errors.Is(err, syncdomain.ErrValidation) {
			return nil, err
		}
		return c.pushAttendanceOneByOne(ctx, recs)
	}

	for _, id := range resp.Acked {
		if err := c.attendanceRepo.MarkSynced(ctx, id); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (c *Coordinator) pushAttendanceOneByOne(ctx context.Context, recs []attendance.Record) ([]syncdomain.SyncError, error) {
	var dropped []syncdomain.SyncError
	for _, r := range recs {
		req := syncapi.PushAttendanceRequest{Records: []syncapi.AttendancePayload{attendancePayload(r)}}
		resp, err := c.api.PushAttendance(ctx, req)
		if err != nil {
			if !errors.Is(err, syncdomain.ErrValidation) {
				return dropped, err
			}
			// The record stays in the local log but leaves the queue; the
			// server will never accept it.
			if merr := c.attendanceRepo.MarkSynced(ctx, r.ID); merr != nil {
				return dropped, merr
			}
			dropped = append(dropped, c.newSyncError(syncdomain.CategoryAttendance,
				"dropped rejected punch "+r.ID+": "+err.Error()))
			continue
		}
		for _, id := range resp.Acked {
			if err := c.attendanceRepo.MarkSynced(ctx, id); err != nil {
				return dropped, err
			}
		}
	}
	return dropped, nil
}

// syncSettings pushes unsynced settings. MarkSynced's timestamp guard keeps
// a key queued when it was rewritten while the push was in flight.
func (c *Coordinator) syncSettings(ctx context.Context, _ string) ([]syncdomain.SyncError, error) {
	muts, err := c.settingsRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, err
	}
	if len(muts) == 0 {
		return nil, nil
	}

	entries := make([]syncapi.SettingEntry, 0, len(muts))
	byKey := make(map[string]settings.Mutation, len(muts))
	for _, m := range muts {
		entries = append(entries, syncapi.SettingEntry{Key: m.Key, Value: m.Value, UpdatedAt: m.UpdatedAt})
		byKey[m.Key] = m
	}

	resp, err := c.api.PushSettings(ctx, syncapi.PushSettingsRequest{Entries: entries})
	if err != nil {
		if !errors.Is(err, syncdomain.ErrValidation) {
			return nil, err
		}
		for _, m := range muts {
			if serr := c.settingsRepo.MarkSynced(ctx, m.Key, m.UpdatedAt); serr != nil {
				return nil, serr
			}
		}
		return []syncdomain.SyncError{c.newSyncError(syncdomain.CategorySettings, err.Error())}, nil
	}

	for _, key := range resp.Acked {
		m, ok := byKey[key]
		if !ok {
			continue
		}
		if err := c.settingsRepo.MarkSynced(ctx, key, m.UpdatedAt); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// collectUnsynced snapshots every queued mutation across the three
// categories. Listing errors are logged and leave that category's slice
// empty; the snapshot feeds the observable state, not the push path.
func (c *Coordinator) collectUnsynced(ctx context.Context) syncdomain.UnsyncedItems {
	var muts []syncdomain.Mutation

	if fields, err := c.profileRepo.ListUnsynced(ctx); err != nil {
		c.logger.Warn("failed to list unsynced profile fields", "error", err)
	} else {
		for _, f := range fields {
			muts = append(muts, syncdomain.ProfileMutation{FieldMutation: f})
		}
	}
	if recs, err := c.attendanceRepo.ListUnsynced(ctx); err != nil {
		c.logger.Warn("failed to list unsynced punches", "error", err)
	} else {
		for _, r := range recs {
			muts = append(muts, syncdomain.AttendanceMutation{Record: r})
		}
	}
	if entries, err := c.settingsRepo.ListUnsynced(ctx); err != nil {
		c.logger.Warn("failed to list unsynced settings", "error", err)
	} else {
		for _, e := range entries {
			muts = append(muts, syncdomain.SettingMutation{Mutation: e})
		}
	}

	return groupUnsynced(muts)
}

// groupUnsynced buckets mutations by concrete type. The switch is exhaustive
// over the closed union; a new category fails here at compile review, not
// silently at runtime.
func groupUnsynced(muts []syncdomain.Mutation) syncdomain.UnsyncedItems {
	var items syncdomain.UnsyncedItems
	for _, m := range muts {
		switch v := m.(type) {
		case syncdomain.ProfileMutation:
			items.Profile = append(items.Profile, v.FieldMutation)
		case syncdomain.AttendanceMutation:
			items.Attendance = append(items.Attendance, v.Record)
		case syncdomain.SettingMutation:
			items.Settings = append(items.Settings, v.Mutation)
		}
	}
	return items
}

func (c *Coordinator) publish(state syncdomain.State) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(sse.Event{Event: "sync_state", Data: state})
}

func (c *Coordinator) newSyncError(cat syncdomain.Category, msg string) syncdomain.SyncError {
	return syncdomain.SyncError{
		ID:        uuid.NewString(),
		Message:   msg,
		Timestamp: c.now(),
		Type:      cat,
	}
}

func attendancePayload(r attendance.Record) syncapi.AttendancePayload {
	return syncapi.AttendancePayload{
		ClientID:         r.ID,
		Timestamp:        r.Timestamp,
		PunchDirection:   string(r.PunchDirection),
		PunchType:        string(r.PunchType),
		AttendanceStatus: r.AttendanceStatus,
		DateOfPunch:      r.DateOfPunch,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Address:          r.Address,
		RequiresApproval: r.RequiresApproval,
	}
}
