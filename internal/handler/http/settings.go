package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Put(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.Service
}

func NewSettingsHandler(settingsService settings.Service) SettingsHandler {
	return &settingsHandlerImpl{
		settingsService: settingsService,
	}
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		response.BadRequest(w, "Setting key is required", nil)
		return
	}

	result, err := h.settingsService.Get(r.Context(), key)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Put implements SettingsHandler.
func (h *settingsHandlerImpl) Put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		response.BadRequest(w, "Setting key is required", nil)
		return
	}

	var req settings.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode setting update", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.settingsService.Put(r.Context(), key, req.Value)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Setting stored; queued for sync", result)
}
