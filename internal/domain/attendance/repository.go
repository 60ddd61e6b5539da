package attendance

import (
	"context"
)

// Repository defines local data access for the punch log. The log is
// append-only: besides Create, the only write is MarkSynced.
type Repository interface {
	// Create appends a new punch record
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id string) (Record, error)

	// Last retrieves the most recent punch by timestamp, or nil when the log
	// is empty
	Last(ctx context.Context) (*Record, error)

	// List retrieves records newest first with pagination
	List(ctx context.Context, filter HistoryFilter) ([]Record, int64, error)

	// ListUnsynced retrieves records not yet acknowledged by the server,
	// oldest first
	ListUnsynced(ctx context.Context) ([]Record, error)

	// MarkSynced flips is_synced for the given record. Marking an already
	// synced record is a no-op, so duplicate acks are safe.
	MarkSynced(ctx context.Context, id string) error

	// DeleteAll clears the log (logout)
	DeleteAll(ctx context.Context) error
}
