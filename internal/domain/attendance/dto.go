package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type PunchRequest struct {
	Direction PunchDirection `json:"direction"`
	PunchType PunchType      `json:"punch_type"`
	Latitude  *float64       `json:"latitude"`
	Longitude *float64       `json:"longitude"`
	Address   *string        `json:"address"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Direction != DirectionIn && r.Direction != DirectionOut {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be IN or OUT",
		})
	}

	switch r.PunchType {
	case "", PunchTypeRegular, PunchTypeBreak:
	case PunchTypeAuto:
		errs = append(errs, validator.ValidationError{
			Field:   "punch_type",
			Message: "AUTO punches are appended by missed checkout resolution only",
		})
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "punch_type",
			Message: "punch_type must be REGULAR or BREAK",
		})
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ResolveMissedCheckoutRequest struct {
	Option MissedCheckoutOption `json:"option"`
	// PickedTime is required when Option is PICK_TIME, RFC 3339.
	PickedTime *time.Time `json:"picked_time"`
}

func (r *ResolveMissedCheckoutRequest) Validate() error {
	var errs validator.ValidationErrors

	switch r.Option {
	case ResolveCheckoutNow, ResolveAutoShiftEnd:
	case ResolvePickTime:
		if r.PickedTime == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "picked_time",
				Message: "picked_time is required for PICK_TIME",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "option",
			Message: "option must be CHECKOUT_NOW, PICK_TIME or AUTO_SHIFT_END",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	PunchDirection   string    `json:"punch_direction"`
	PunchType        string    `json:"punch_type"`
	AttendanceStatus *string   `json:"attendance_status,omitempty"`
	IsSynced         bool      `json:"is_synced"`
	DateOfPunch      string    `json:"date_of_punch"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Address          *string   `json:"address,omitempty"`
	RequiresApproval bool      `json:"requires_approval"`
}

func ToRecordResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:               rec.ID,
		Timestamp:        rec.Timestamp,
		PunchDirection:   string(rec.PunchDirection),
		PunchType:        string(rec.PunchType),
		AttendanceStatus: rec.AttendanceStatus,
		IsSynced:         rec.IsSynced,
		DateOfPunch:      rec.DateOfPunch,
		Latitude:         rec.Latitude,
		Longitude:        rec.Longitude,
		Address:          rec.Address,
		RequiresApproval: rec.RequiresApproval,
	}
}

type HistoryFilter struct {
	Limit  int
	Offset int
}

type HistoryResponse struct {
	Records    []RecordResponse `json:"records"`
	TotalItems int64            `json:"total_items"`
}

// StatusResponse pairs the punch button state with the provisional day
// classification for the punch date.
type StatusResponse struct {
	CheckStatusResult
	DayStatus       DayStatus `json:"day_status"`
	DayStatusIsOpen bool      `json:"day_status_is_open"`
	UnsyncedCount   int       `json:"unsynced_count"`
}
