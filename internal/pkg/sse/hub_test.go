package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishAndSubscribe(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe()
	defer cleanup()

	hub.Publish(Event{Event: "sync_state", Data: "one"})

	select {
	case got := <-ch:
		assert.Equal(t, "sync_state", got.Event)
		assert.Equal(t, "one", got.Data)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscriber channel")
	}
}

func TestHub_SnapshotReplayOnSubscribe(t *testing.T) {
	hub := NewHub()

	hub.Publish(Event{Event: "sync_state", Data: "stale"})
	hub.Publish(Event{Event: "sync_state", Data: "current"})

	ch, cleanup := hub.Subscribe()
	defer cleanup()

	// A late subscriber sees only the retained snapshot, not the history.
	select {
	case got := <-ch:
		assert.Equal(t, "current", got.Data)
	case <-time.After(time.Second):
		t.Fatal("expected snapshot replay on subscribe")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected extra event: %v", got)
	default:
	}
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	cleanup()
	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHub_Latest(t *testing.T) {
	hub := NewHub()

	_, ok := hub.Latest("sync_state")
	assert.False(t, ok)

	hub.Publish(Event{Event: "sync_state", Data: 42})
	got, ok := hub.Latest("sync_state")
	require.True(t, ok)
	assert.Equal(t, 42, got.Data)
}
