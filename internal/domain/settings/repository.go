package settings

import (
	"context"
	"time"
)

// Repository defines local data access for settings and the device pin. The
// pin never leaves the device and is not part of the sync queue.
type Repository interface {
	// Get retrieves a setting by key
	Get(ctx context.Context, key string) (Mutation, error)

	// Set upserts a setting value and marks it unsynced
	Set(ctx context.Context, key, value string, updatedAt time.Time) error

	// ListUnsynced retrieves settings not yet acknowledged, oldest first
	ListUnsynced(ctx context.Context) ([]Mutation, error)

	// MarkSynced flips is_synced for the key unless a newer write superseded
	// the pushed value while the push was in flight.
	MarkSynced(ctx context.Context, key string, ifUpdatedAt time.Time) error

	// DeleteAll clears all settings (logout)
	DeleteAll(ctx context.Context) error

	// GetPinHash retrieves the bcrypt hash of the device pin
	GetPinHash(ctx context.Context) (string, error)

	// SetPinHash stores the bcrypt hash of the device pin
	SetPinHash(ctx context.Context, hash string) error
}
