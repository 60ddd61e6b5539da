package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrStaleSession      = errors.New("open check-in is too old to check out; resolve it from attendance history")
	ErrNoMissedCheckout  = errors.New("no missed checkout to resolve")
	ErrCheckoutBeforeIn  = errors.New("checkout time must be after the open check-in")
	ErrCheckoutInFuture  = errors.New("checkout time must not be in the future")
	ErrInvalidResolution = errors.New("unknown missed checkout resolution option")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
