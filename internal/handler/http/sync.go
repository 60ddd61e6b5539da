package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/sse"
)

type SyncHandler interface {
	Trigger(w http.ResponseWriter, r *http.Request)
	State(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type syncHandlerImpl struct {
	syncService syncdomain.Service
	hub         *sse.Hub
	jwtService  jwt.Service
	email       string
	userID      string
}

func NewSyncHandler(syncService syncdomain.Service, hub *sse.Hub, jwtService jwt.Service, email, userID string) SyncHandler {
	return &syncHandlerImpl{
		syncService: syncService,
		hub:         hub,
		jwtService:  jwtService,
		email:       email,
		userID:      userID,
	}
}

// Trigger implements SyncHandler. Manual sync is fire-and-forget; the UI
// follows progress over the event stream.
func (h *syncHandlerImpl) Trigger(w http.ResponseWriter, r *http.Request) {
	started := h.syncService.TriggerSync(h.email, h.userID)
	if !started {
		response.Accepted(w, "A sync cycle is already running", h.syncService.State())
		return
	}

	response.Accepted(w, "Sync started", h.syncService.State())
}

// State implements SyncHandler.
func (h *syncHandlerImpl) State(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.syncService.State())
}

// Events implements SyncHandler. Streams sync state and punch state
// snapshots; the latest snapshot of each is replayed on connect.
func (h *syncHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		response.Unauthorized(w, "Missing stream token")
		return
	}
	if _, err := h.jwtService.ValidateSSEToken(tokenString); err != nil {
		response.Unauthorized(w, "Invalid stream token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cleanup := h.hub.Subscribe()
	defer cleanup()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode stream event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
			flusher.Flush()
		}
	}
}
