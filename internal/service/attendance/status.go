package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
)

// ComputeCheckStatus derives the punch button state from the last attendance
// record and the current time. Pure and total; the caller re-invokes it on a
// periodic tick because the result changes with the wall clock alone.
//
// Rules, in priority order:
//  1. no record, or last punch is OUT: check-in.
//  2. last punch is IN and older than the stale threshold: forced check-in.
//     Checkout is disallowed; the open session is presumed abandoned and has
//     to be corrected out-of-band, not silently auto-closed. Staleness wins
//     over missed checkout when both thresholds have passed.
//  3. last punch is IN and the scheduled shift end plus the grace buffer has
//     passed: missed checkout.
//  4. otherwise: normal open session.
func ComputeCheckStatus(last *attendance.Record, now time.Time, cfg attendance.ShiftConfig) attendance.CheckStatusResult {
	if last == nil || last.PunchDirection == attendance.DirectionOut {
		return attendance.CheckStatusResult{
			ButtonType:  attendance.ButtonCheckIn,
			ButtonColor: attendance.ColorDefault,
		}
	}

	staleAfter := time.Duration(cfg.StaleThresholdDays) * 24 * time.Hour
	// Exactly at the threshold is still a valid session.
	if now.Sub(last.Timestamp) > staleAfter {
		return attendance.CheckStatusResult{
			ButtonType:  attendance.ButtonCheckIn,
			ButtonColor: attendance.ColorDefault,
			IsStale:     true,
		}
	}

	deadline := ShiftEndInstant(last.DateOfPunch, cfg).Add(time.Duration(cfg.MissedCheckoutBufferHours) * time.Hour)
	if now.After(deadline) {
		return attendance.CheckStatusResult{
			ButtonType:              attendance.ButtonCheckOut,
			ButtonColor:             attendance.ColorRed,
			IsMissedCheckout:        true,
			ShowMissedCheckoutModal: true,
		}
	}

	return attendance.CheckStatusResult{
		ButtonType:  attendance.ButtonCheckOut,
		ButtonColor: attendance.ColorDefault,
	}
}

// ShiftEndInstant resolves the scheduled shift end for the shift that began
// on dateOfPunch. An overnight shift ends on the following day.
func ShiftEndInstant(dateOfPunch string, cfg attendance.ShiftConfig) time.Time {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	day, err := time.ParseInLocation("2006-01-02", dateOfPunch, loc)
	if err != nil {
		// A malformed date never blocks the state machine; fall back to the
		// zero time so the session reads as long past its shift end.
		return time.Time{}
	}

	end := day.Add(time.Duration(cfg.EndMinutes) * time.Minute)
	if cfg.Overnight() {
		end = end.Add(24 * time.Hour)
	}
	return end
}

// WithinShiftWindow reports whether now falls inside the scheduled shift
// window. Same-day shifts use a closed interval; overnight shifts wrap
// around midnight.
func WithinShiftWindow(now time.Time, cfg attendance.ShiftConfig) bool {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()

	if cfg.Overnight() {
		return minutes >= cfg.StartMinutes || minutes <= cfg.EndMinutes
	}
	return minutes >= cfg.StartMinutes && minutes <= cfg.EndMinutes
}

// DeriveDayStatus classifies today's attendance from the last punch. The
// boolean result reports whether the shift window for today is still open,
// in which case a PARTIAL or ABSENT day is provisional rather than final;
// the employee can still complete it without penalty.
func DeriveDayStatus(last *attendance.Record, now time.Time, cfg attendance.ShiftConfig) (attendance.DayStatus, bool) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format("2006-01-02")

	var status attendance.DayStatus
	switch {
	case last == nil || last.DateOfPunch != today:
		status = attendance.DayAbsent
	case last.PunchDirection == attendance.DirectionIn:
		status = attendance.DayPartial
	case last.PunchType == attendance.PunchTypeBreak:
		status = attendance.DayPartial
	default:
		status = attendance.DayPresent
	}

	stillOpen := !now.After(ShiftEndInstant(today, cfg))
	return status, stillOpen
}
