package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
)

type ProfileHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type profileHandlerImpl struct {
	profileService profile.Service
}

func NewProfileHandler(profileService profile.Service) ProfileHandler {
	return &profileHandlerImpl{
		profileService: profileService,
	}
}

// Get implements ProfileHandler.
func (h *profileHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.profileService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements ProfileHandler.
func (h *profileHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req profile.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode profile update", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.profileService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated; changes queued for sync", result)
}
