package settings

import (
	"context"
)

// Service defines settings and local session operations. Settings writes are
// optimistic and queued for push; the device pin never leaves the device.
type Service interface {
	// Get returns a setting by key
	Get(ctx context.Context, key string) (Response, error)

	// Put upserts a setting value and queues it for sync
	Put(ctx context.Context, key, value string) (Response, error)

	// SetPin stores the device pin used to unlock the agent while offline
	SetPin(ctx context.Context, pin string) error

	// Unlock verifies the device pin
	Unlock(ctx context.Context, pin string) error

	// Logout cancels any in-flight sync cycle and wipes the local store.
	// Unsynced punches and edits are discarded; callers should sync first.
	Logout(ctx context.Context) error
}
