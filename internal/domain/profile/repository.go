package profile

import (
	"context"
	"time"
)

// Repository defines local data access for the merged profile view and the
// per-field mutation queue.
type Repository interface {
	// Get retrieves the merged profile view
	Get(ctx context.Context) (Profile, error)

	// Save replaces the merged profile view
	Save(ctx context.Context, p Profile) error

	// QueueMutation upserts a dirty field keyed by property name. A newer
	// write to the same property supersedes the queued value.
	QueueMutation(ctx context.Context, m FieldMutation) error

	// ListUnsynced retrieves queued field mutations, oldest first
	ListUnsynced(ctx context.Context) ([]FieldMutation, error)

	// DeleteMutation dequeues a pushed field unless a newer write superseded
	// it while the push was in flight.
	DeleteMutation(ctx context.Context, property string, ifUpdatedAt time.Time) error

	// DeleteAll clears profile state (logout)
	DeleteAll(ctx context.Context) error
}
