package attendance

import (
	"context"
)

// Service defines business logic for device-side attendance operations
type Service interface {
	// Punch records a check-in or check-out after validating it against the
	// current punch state
	Punch(ctx context.Context, req PunchRequest) (RecordResponse, error)

	// Status computes the current punch button state from the last record and
	// the wall clock
	Status(ctx context.Context) (StatusResponse, error)

	// History retrieves the local punch log, newest first
	History(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)

	// ResolveMissedCheckout closes an open session flagged as missed checkout
	// with one of the three resolution options
	ResolveMissedCheckout(ctx context.Context, req ResolveMissedCheckoutRequest) (RecordResponse, error)
}
