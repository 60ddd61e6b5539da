package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/syncapi"
	"github.com/cmlabs-hris/attendance-agent-go/internal/repository/sqlite"
)

func newCoordinatorForTest(t *testing.T, handler http.Handler) (*Coordinator, *database.DB) {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCoordinator(
		sqlite.NewAttendanceRepository(db),
		sqlite.NewProfileRepository(db),
		sqlite.NewSettingsRepository(db),
		syncapi.NewClient(srv.URL, "test-token", 2*time.Second),
		sse.NewHub(),
		logger,
	)
	return c, db
}

func respondData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"code": "ERR", "message": message},
	})
}

// ackAllAttendance acks every pushed client ID.
func ackAllAttendance(w http.ResponseWriter, r *http.Request) {
	var req syncapi.PushAttendanceRequest
	json.NewDecoder(r.Body).Decode(&req)
	acked := make([]string, 0, len(req.Records))
	for _, rec := range req.Records {
		acked = append(acked, rec.ClientID)
	}
	respondData(w, syncapi.PushAttendanceResponse{Acked: acked})
}

func ackAllSettings(w http.ResponseWriter, r *http.Request) {
	var req syncapi.PushSettingsRequest
	json.NewDecoder(r.Body).Decode(&req)
	acked := make([]string, 0, len(req.Entries))
	for _, e := range req.Entries {
		acked = append(acked, e.Key)
	}
	respondData(w, syncapi.PushSettingsResponse{Acked: acked})
}

func seedPunch(t *testing.T, repo attendance.Repository, id string, ts time.Time, direction attendance.PunchDirection) {
	t.Helper()
	_, err := repo.Create(context.Background(), attendance.Record{
		ID:             id,
		Timestamp:      ts,
		PunchDirection: direction,
		PunchType:      attendance.PunchTypeRegular,
		CreatedOn:      ts,
		DateOfPunch:    ts.Format("2006-01-02"),
	})
	require.NoError(t, err)
}

func seedProfileView(t *testing.T, repo profile.Repository, email string) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), profile.Profile{
		Email:     email,
		FirstName: "Dina",
	}))
}

func TestCoordinator_SyncAll_MarksAckedRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/attendance", ackAllAttendance)
	mux.HandleFunc("/api/v1/sync/settings", ackAllSettings)

	c, db := newCoordinatorForTest(t, mux)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	seedProfileView(t, sqlite.NewProfileRepository(db), "dina@cmlabs.co")

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedPunch(t, attendanceRepo, "rec-1", now, attendance.DirectionIn)
	seedPunch(t, attendanceRepo, "rec-2", now.Add(8*time.Hour), attendance.DirectionOut)

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)

	assert.False(t, state.IsSyncing)
	assert.NotNil(t, state.LastSyncAt)
	assert.Empty(t, state.SyncErrors)
	assert.Zero(t, state.Unsynced.Count())

	remaining, err := attendanceRepo.ListUnsynced(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// A second cycle finds nothing to push and stays clean; re-acking an
	// already synced record is a no-op either way.
	state, err = c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)
	assert.Empty(t, state.SyncErrors)
}

func TestCoordinator_CategoryFailureIsIsolated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/attendance", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusInternalServerError, "storage unavailable")
	})
	mux.HandleFunc("/api/v1/sync/settings", ackAllSettings)

	c, db := newCoordinatorForTest(t, mux)
	seedProfileView(t, sqlite.NewProfileRepository(db), "dina@cmlabs.co")
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedPunch(t, attendanceRepo, "rec-1", now, attendance.DirectionIn)
	require.NoError(t, settingsRepo.Set(context.Background(), "theme", "dark", now))

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)

	// Settings went through even though attendance failed, so the cycle
	// still counts as a successful sync.
	assert.NotNil(t, state.LastSyncAt)
	assert.Len(t, state.Unsynced.Attendance, 1)
	assert.Empty(t, state.Unsynced.Settings)
	require.Len(t, state.SyncErrors, 1)
	assert.Equal(t, syncdomain.CategoryAttendance, state.SyncErrors[0].Type)
}

func TestCoordinator_NoSuccessLeavesLastSyncAtUnset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusInternalServerError, "down")
	})

	c, db := newCoordinatorForTest(t, mux)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedPunch(t, attendanceRepo, "rec-1", now, attendance.DirectionIn)
	require.NoError(t, settingsRepo.Set(context.Background(), "theme", "dark", now))

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)

	assert.Nil(t, state.LastSyncAt)
	assert.Len(t, state.Unsynced.Attendance, 1)
	assert.Len(t, state.Unsynced.Settings, 1)
	assert.NotEmpty(t, state.SyncErrors)
}

func TestCoordinator_ErrorListCappedAtTen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusInternalServerError, "down")
	})

	c, db := newCoordinatorForTest(t, mux)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedPunch(t, attendanceRepo, "rec-1", now, attendance.DirectionIn)
	require.NoError(t, settingsRepo.Set(context.Background(), "theme", "dark", now))

	// Every cycle fails profile, attendance and settings; four cycles
	// produce twelve errors and the two oldest are evicted.
	for i := 0; i < 4; i++ {
		_, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
		require.NoError(t, err)
	}

	state := c.State()
	assert.Len(t, state.SyncErrors, syncdomain.MaxErrors)
}

func TestCoordinator_SecondCycleRejectedWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/settings", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		ackAllSettings(w, r)
	})

	c, db := newCoordinatorForTest(t, mux)
	seedProfileView(t, sqlite.NewProfileRepository(db), "dina@cmlabs.co")
	settingsRepo := sqlite.NewSettingsRepository(db)
	require.NoError(t, settingsRepo.Set(context.Background(), "theme", "dark", time.Now()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	}()

	<-entered
	assert.True(t, c.State().IsSyncing)

	_, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	assert.ErrorIs(t, err, syncdomain.ErrSyncInFlight)
	assert.False(t, c.TriggerSync("dina@cmlabs.co", "user-1"))

	close(release)
	<-done
	assert.False(t, c.State().IsSyncing)
}

func TestCoordinator_AuthFailureAbortsCycle(t *testing.T) {
	attendanceCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/profile", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusUnauthorized, "token expired")
	})
	mux.HandleFunc("/api/v1/sync/attendance", func(w http.ResponseWriter, r *http.Request) {
		attendanceCalled = true
		ackAllAttendance(w, r)
	})

	c, db := newCoordinatorForTest(t, mux)
	profileRepo := sqlite.NewProfileRepository(db)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	seedProfileView(t, profileRepo, "dina@cmlabs.co")

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, profileRepo.QueueMutation(context.Background(), profile.FieldMutation{
		Property:  profile.FieldDesignation,
		Value:     "Lead Engineer",
		UpdatedAt: now,
	}))
	seedPunch(t, attendanceRepo, "rec-1", now, attendance.DirectionIn)

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncdomain.ErrAuth))

	assert.False(t, attendanceCalled, "auth failure stops the cycle before the next category")
	assert.False(t, state.IsSyncing)
	assert.Len(t, state.Unsynced.Attendance, 1)
	assert.Len(t, state.Unsynced.Profile, 1)
}

func TestCoordinator_RejectedPunchLeavesQueueOthersSync(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/attendance", func(w http.ResponseWriter, r *http.Request) {
		var req syncapi.PushAttendanceRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Records) > 1 {
			respondError(w, http.StatusUnprocessableEntity, "malformed record in batch")
			return
		}
		if req.Records[0].ClientID == "rec-bad" {
			respondError(w, http.StatusUnprocessableEntity, "timestamp out of range")
			return
		}
		respondData(w, syncapi.PushAttendanceResponse{Acked: []string{req.Records[0].ClientID}})
	})
	mux.HandleFunc("/api/v1/sync/settings", ackAllSettings)

	c, db := newCoordinatorForTest(t, mux)
	seedProfileView(t, sqlite.NewProfileRepository(db), "dina@cmlabs.co")
	attendanceRepo := sqlite.NewAttendanceRepository(db)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedPunch(t, attendanceRepo, "rec-bad", now, attendance.DirectionIn)
	seedPunch(t, attendanceRepo, "rec-ok", now.Add(time.Hour), attendance.DirectionOut)

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)

	remaining, err := attendanceRepo.ListUnsynced(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining, "rejected record is dropped from the queue, not retried")

	require.Len(t, state.SyncErrors, 1)
	assert.Equal(t, syncdomain.CategoryAttendance, state.SyncErrors[0].Type)
	assert.Contains(t, state.SyncErrors[0].Message, "rec-bad")

	// The rejected punch stays in the local log.
	rec, err := attendanceRepo.GetByID(context.Background(), "rec-bad")
	require.NoError(t, err)
	assert.True(t, rec.IsSynced)
}

func TestCoordinator_ProfilePushMergesAndDequeues(t *testing.T) {
	syncedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/profile", func(w http.ResponseWriter, r *http.Request) {
		var req syncapi.PushProfileRequest
		json.NewDecoder(r.Body).Decode(&req)
		respondData(w, syncapi.PushProfileResponse{
			LastSyncedAt: syncedAt,
			Fields:       req.Fields,
		})
	})

	c, db := newCoordinatorForTest(t, mux)
	profileRepo := sqlite.NewProfileRepository(db)
	seedProfileView(t, profileRepo, "dina@cmlabs.co")

	require.NoError(t, profileRepo.QueueMutation(context.Background(), profile.FieldMutation{
		Property:  profile.FieldDesignation,
		Value:     "Lead Engineer",
		UpdatedAt: syncedAt.Add(-time.Minute),
	}))

	state, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)
	assert.Empty(t, state.SyncErrors)
	assert.Empty(t, state.Unsynced.Profile)

	view, err := profileRepo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lead Engineer", view.Designation)
	assert.Equal(t, syncedAt, view.LastSyncedAt.UTC())
}

func TestCoordinator_FirstRunPullsProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sync/profile", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		respondData(w, syncapi.RemoteProfile{
			Email:          "dina@cmlabs.co",
			FirstName:      "Dina",
			LastName:       "Putri",
			EmploymentType: "FULL_TIME",
			Designation:    "Backend Engineer",
			LastSyncedAt:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		})
	})

	c, db := newCoordinatorForTest(t, mux)
	profileRepo := sqlite.NewProfileRepository(db)

	_, err := c.SyncAll(context.Background(), "dina@cmlabs.co", "user-1")
	require.NoError(t, err)

	view, err := profileRepo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dina", view.FirstName)
	assert.Equal(t, "Backend Engineer", view.Designation)
}
