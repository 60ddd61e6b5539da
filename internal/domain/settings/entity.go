package settings

import (
	"time"
)

// Mutation is one locally changed setting queued for push, keyed by setting
// key. Same supersede semantics as profile field mutations: the last value
// written locally wins before any network round-trip.
type Mutation struct {
	Key       string
	Value     string
	UpdatedAt time.Time
	IsSynced  bool
}
