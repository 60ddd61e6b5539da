package sync

import "errors"

// Sync failure taxonomy. Every error crossing the sync API boundary wraps
// exactly one of these so the coordinator can pick the retry policy with
// errors.Is.
var (
	// ErrNetwork covers timeouts and unreachable servers. Items stay queued
	// and are retried next cycle.
	ErrNetwork = errors.New("network error")

	// ErrValidation covers malformed local records the server rejects. The
	// item is dropped and logged; retrying would loop forever.
	ErrValidation = errors.New("validation error")

	// ErrAuth covers rejected credentials. Propagated to the caller, never
	// silently retried.
	ErrAuth = errors.New("authentication error")

	// ErrSyncInFlight is returned when a cycle is requested while another is
	// still running.
	ErrSyncInFlight = errors.New("sync already in progress")
)
