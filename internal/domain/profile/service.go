package profile

import (
	"context"
)

// Service defines profile operations consumed by handlers. All reads and
// writes hit the local store only; the sync coordinator moves queued edits
// to the server.
type Service interface {
	// Get returns the merged profile view plus the names of fields with
	// edits still queued for push.
	Get(ctx context.Context) (Response, error)

	// Update applies field edits optimistically to the local view and
	// queues one mutation per field.
	Update(ctx context.Context, req UpdateRequest) (Response, error)
}
