package attendance

import (
	"time"
)

// PunchDirection is the direction of a punch event.
type PunchDirection string

const (
	DirectionIn  PunchDirection = "IN"
	DirectionOut PunchDirection = "OUT"
)

// PunchType labels what kind of punch was recorded. Break punches are OUT
// punches that pause a session without ending the working day.
type PunchType string

const (
	PunchTypeRegular PunchType = "REGULAR"
	PunchTypeBreak   PunchType = "BREAK"
	PunchTypeAuto    PunchType = "AUTO"
)

// Record is a single punch event in the local append-only log. A record is
// never mutated after creation except IsSynced flipping false to true exactly
// once, when the server acknowledges it.
type Record struct {
	ID               string
	Timestamp        time.Time
	PunchDirection   PunchDirection
	PunchType        PunchType
	AttendanceStatus *string
	IsSynced         bool
	CreatedOn        time.Time
	DateOfPunch      string // local date of the punch, "2006-01-02"
	Latitude         *float64
	Longitude        *float64
	Address          *string
	RequiresApproval bool
}

// ButtonType tells the UI which action the punch button performs next.
type ButtonType string

const (
	ButtonCheckIn  ButtonType = "CHECK_IN"
	ButtonCheckOut ButtonType = "CHECK_OUT"
)

// ButtonColor is the UI palette for the punch button. Green is reserved for
// the UI's own confirmation styling; the state machine only emits Default
// and Red.
type ButtonColor string

const (
	ColorDefault ButtonColor = "DEFAULT"
	ColorGreen   ButtonColor = "GREEN"
	ColorRed     ButtonColor = "RED"
)

// DayStatus is the derived classification of a working day.
type DayStatus string

const (
	DayPresent DayStatus = "PRESENT"
	DayPartial DayStatus = "PARTIAL"
	DayAbsent  DayStatus = "ABSENT"
)

// ShiftConfig carries the scheduled shift window and the thresholds the punch
// state machine evaluates against. Minutes are counted from local midnight; a
// shift with EndMinutes < StartMinutes crosses midnight.
type ShiftConfig struct {
	StartMinutes              int
	EndMinutes                int
	StaleThresholdDays        int
	MissedCheckoutBufferHours int
	Location                  *time.Location
}

// Overnight reports whether the shift crosses midnight.
func (c ShiftConfig) Overnight() bool {
	return c.EndMinutes < c.StartMinutes
}

// Geofence is the provisioned work area. A punch with coordinates outside
// the radius is still recorded but flagged for approval; location never
// blocks a punch.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Enabled reports whether a work area was provisioned.
func (g Geofence) Enabled() bool {
	return g.RadiusMeters > 0
}

// CheckStatusResult is the output of the punch state machine.
type CheckStatusResult struct {
	ButtonType              ButtonType  `json:"button_type"`
	ButtonColor             ButtonColor `json:"button_color"`
	IsStale                 bool        `json:"is_stale"`
	IsMissedCheckout        bool        `json:"is_missed_checkout"`
	ShowMissedCheckoutModal bool        `json:"show_missed_checkout_modal"`
}

// MissedCheckoutOption is one of the three ways a missed checkout can be
// closed out.
type MissedCheckoutOption string

const (
	// ResolveCheckoutNow appends an OUT punch at the current time. It is the
	// only option that does not require approval.
	ResolveCheckoutNow MissedCheckoutOption = "CHECKOUT_NOW"
	// ResolvePickTime appends an OUT punch at a user-picked past time.
	ResolvePickTime MissedCheckoutOption = "PICK_TIME"
	// ResolveAutoShiftEnd appends an OUT punch at the scheduled shift end.
	ResolveAutoShiftEnd MissedCheckoutOption = "AUTO_SHIFT_END"
)
