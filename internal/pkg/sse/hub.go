package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Event string
	Data  interface{}
}

// Hub manages SSE subscribers and event broadcasting for the single local
// user. The latest event per name is retained and replayed on subscribe, so
// a late subscriber immediately sees the current snapshot instead of waiting
// for the next replacement.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	latest      map[string]Event
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		latest:      make(map[string]Event),
	}
}

// Subscribe registers a new subscriber and returns the event channel and
// cleanup function. Retained snapshots are queued before the channel is
// handed out.
func (h *Hub) Subscribe() (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	for _, event := range h.latest {
		ch <- event
	}
	h.subscribers[ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; !ok {
			return
		}
		delete(h.subscribers, ch)
		close(ch)
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers and retains it as the current
// snapshot for its event name.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[event.Event] = event

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// Latest returns the retained snapshot for an event name, if any.
func (h *Hub) Latest(name string) (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event, ok := h.latest[name]
	return event, ok
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}
