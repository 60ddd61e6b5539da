package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/utils"
)

const (
	statusPendingApproval = "PENDING_APPROVAL"
	statusOutOfArea       = "OUT_OF_AREA"
)

type ServiceImpl struct {
	repo  attendance.Repository
	cfg   attendance.ShiftConfig
	fence attendance.Geofence
	cache *statusCache
	now   func() time.Time
}

func NewService(repo attendance.Repository, cfg attendance.ShiftConfig, fence attendance.Geofence) *ServiceImpl {
	return &ServiceImpl{
		repo:  repo,
		cfg:   cfg,
		fence: fence,
		cache: &statusCache{},
		now:   time.Now,
	}
}

// Punch implements attendance.Service.
func (s *ServiceImpl) Punch(ctx context.Context, req attendance.PunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	last, err := s.repo.Last(ctx)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to load last punch: %w", err)
	}

	now := s.now()
	state := ComputeCheckStatus(last, now, s.cfg)

	switch req.Direction {
	case attendance.DirectionIn:
		if state.ButtonType != attendance.ButtonCheckIn {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
	case attendance.DirectionOut:
		if state.ButtonType != attendance.ButtonCheckOut {
			if state.IsStale {
				return attendance.RecordResponse{}, attendance.ErrStaleSession
			}
			return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
		}
	}

	punchType := req.PunchType
	if punchType == "" {
		punchType = attendance.PunchTypeRegular
	}

	loc := s.cfg.Location
	if loc == nil {
		loc = time.Local
	}

	rec := attendance.Record{
		ID:             uuid.NewString(),
		Timestamp:      now,
		PunchDirection: req.Direction,
		PunchType:      punchType,
		IsSynced:       false,
		CreatedOn:      now,
		DateOfPunch:    now.In(loc).Format("2006-01-02"),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Address:        req.Address,
	}

	if s.fence.Enabled() && req.Latitude != nil && req.Longitude != nil {
		distance := utils.CalculateHaversineDistance(
			s.fence.Latitude, s.fence.Longitude, *req.Latitude, *req.Longitude,
		)
		if distance > s.fence.RadiusMeters {
			status := statusOutOfArea
			rec.AttendanceStatus = &status
			rec.RequiresApproval = true
		}
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.cache.invalidate()
	return attendance.ToRecordResponse(created), nil
}

// Status implements attendance.Service.
func (s *ServiceImpl) Status(ctx context.Context) (attendance.StatusResponse, error) {
	last, err := s.repo.Last(ctx)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to load last punch: %w", err)
	}

	now := s.now()

	key := statusKey{
		configHash:   shiftConfigHash(s.cfg),
		minuteBucket: now.Unix() / 60,
	}
	if last != nil {
		key.recordID = last.ID
	}

	state, hit := s.cache.get(key)
	if !hit {
		state = ComputeCheckStatus(last, now, s.cfg)
		s.cache.put(key, state)
	}

	dayStatus, open := DeriveDayStatus(last, now, s.cfg)

	unsynced, err := s.repo.ListUnsynced(ctx)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to count unsynced punches: %w", err)
	}

	return attendance.StatusResponse{
		CheckStatusResult: state,
		DayStatus:         dayStatus,
		DayStatusIsOpen:   open,
		UnsyncedCount:     len(unsynced),
	}, nil
}

// History implements attendance.Service.
func (s *ServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}

	out := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.ToRecordResponse(rec))
	}

	return attendance.HistoryResponse{Records: out, TotalItems: total}, nil
}

// ResolveMissedCheckout implements attendance.Service.
func (s *ServiceImpl) ResolveMissedCheckout(ctx context.Context, req attendance.ResolveMissedCheckoutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	last, err := s.repo.Last(ctx)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to load last punch: %w", err)
	}

	now := s.now()
	state := ComputeCheckStatus(last, now, s.cfg)
	if !state.IsMissedCheckout {
		return attendance.RecordResponse{}, attendance.ErrNoMissedCheckout
	}

	var (
		checkoutAt       time.Time
		punchType        = attendance.PunchTypeRegular
		requiresApproval bool
	)

	switch req.Option {
	case attendance.ResolveCheckoutNow:
		checkoutAt = now
	case attendance.ResolvePickTime:
		checkoutAt = *req.PickedTime
		if !checkoutAt.After(last.Timestamp) {
			return attendance.RecordResponse{}, attendance.ErrCheckoutBeforeIn
		}
		if checkoutAt.After(now) {
			return attendance.RecordResponse{}, attendance.ErrCheckoutInFuture
		}
		requiresApproval = true
	case attendance.ResolveAutoShiftEnd:
		checkoutAt = ShiftEndInstant(last.DateOfPunch, s.cfg)
		punchType = attendance.PunchTypeAuto
		requiresApproval = true
	default:
		return attendance.RecordResponse{}, attendance.ErrInvalidResolution
	}

	rec := attendance.Record{
		ID:               uuid.NewString(),
		Timestamp:        checkoutAt,
		PunchDirection:   attendance.DirectionOut,
		PunchType:        punchType,
		IsSynced:         false,
		CreatedOn:        now,
		DateOfPunch:      last.DateOfPunch,
		RequiresApproval: requiresApproval,
	}
	if requiresApproval {
		status := statusPendingApproval
		rec.AttendanceStatus = &status
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.cache.invalidate()
	return attendance.ToRecordResponse(created), nil
}
