package sync

import (
	"context"
)

// Service defines the sync coordinator consumed by handlers and scheduled
// jobs.
type Service interface {
	// TriggerSync starts a sync cycle in the background. It is a no-op when
	// a cycle is already in flight; the return value reports whether a new
	// cycle was started.
	TriggerSync(email, userID string) bool

	// SyncAll runs one full sync cycle and returns the resulting state.
	SyncAll(ctx context.Context, email, userID string) (State, error)

	// State returns the current state snapshot.
	State() State

	// Cancel aborts any in-flight cycle. Called on logout before the local
	// store is cleared so a stale cycle cannot write into it.
	Cancel()
}
