package sync

import (
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
)

// MergeProfile reconciles the server's profile view with locally queued
// field mutations using per-field last-writer-wins. For each dirty field the
// remote value wins iff the server's lastSyncedAt is at or past the local
// edit time; ties favor remote so a push→ack→pull cycle converges instead of
// oscillating (a successful push means the server value already reflects the
// local write). A field whose local edit is newer keeps its local value and
// is returned in requeue for the next push cycle.
//
// Granularity matters: two fields of the same record edited at different
// times are resolved independently, so a stale field accepting the remote
// value never drags a newer field's local edit down with it.
//
// Pure and total: no error cases, and re-merging the same inputs yields the
// same outputs.
func MergeProfile(remote profile.Profile, local []profile.FieldMutation) (profile.Profile, []profile.FieldMutation) {
	merged := remote

	var requeue []profile.FieldMutation
	for _, m := range local {
		if !m.UpdatedAt.After(remote.LastSyncedAt) {
			// Remote wins, the queued edit is already reflected (or beaten)
			// server-side.
			continue
		}
		merged.SetField(m.Property, m.Value)
		requeue = append(requeue, m)
		if m.UpdatedAt.After(merged.LastUpdatedAt) {
			merged.LastUpdatedAt = m.UpdatedAt
		}
	}

	if merged.LastUpdatedAt.Before(remote.LastSyncedAt) {
		merged.LastUpdatedAt = remote.LastSyncedAt
	}

	return merged, requeue
}
