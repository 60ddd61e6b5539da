package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/jwt"
)

type SessionHandler interface {
	Unlock(w http.ResponseWriter, r *http.Request)
	SetPin(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	settingsService settings.Service
	jwtService      jwt.Service
	email           string
	userID          string
}

func NewSessionHandler(settingsService settings.Service, jwtService jwt.Service, email, userID string) SessionHandler {
	return &sessionHandlerImpl{
		settingsService: settingsService,
		jwtService:      jwtService,
		email:           email,
		userID:          userID,
	}
}

type unlockResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Unlock implements SessionHandler. A correct pin yields the session token
// the UI shell sends on every subsequent request.
func (h *sessionHandlerImpl) Unlock(w http.ResponseWriter, r *http.Request) {
	var req settings.PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode unlock request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.settingsService.Unlock(r.Context(), req.Pin); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateSessionToken(h.email, h.userID)
	if err != nil {
		slog.Error("Failed to mint session token", "error", err)
		response.InternalServerError(w, "Failed to create session")
		return
	}

	response.Success(w, unlockResponse{Token: token, ExpiresAt: expiresAt})
}

// SetPin implements SessionHandler.
func (h *sessionHandlerImpl) SetPin(w http.ResponseWriter, r *http.Request) {
	var req settings.PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode set pin request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.settingsService.SetPin(r.Context(), req.Pin); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pin updated", nil)
}

type sseTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEToken implements SessionHandler. EventSource cannot set an
// Authorization header, so the stream authenticates with a short-lived
// query token minted here.
func (h *sessionHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	token, expiresIn, err := h.jwtService.GenerateSSEToken(h.email)
	if err != nil {
		slog.Error("Failed to mint sse token", "error", err)
		response.InternalServerError(w, "Failed to create stream token")
		return
	}

	response.Success(w, sseTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Logout implements SessionHandler. Wipes the local store and revokes the
// presented session token so it cannot write into the cleared store.
// Anything still unsynced is lost, which the UI warns about before calling
// this.
func (h *sessionHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsService.Logout(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	if token := jwtauth.TokenFromHeader(r); token != "" {
		h.jwtService.RevokeToken(token)
	}

	response.SuccessWithMessage(w, "Logged out; local data cleared", nil)
}
