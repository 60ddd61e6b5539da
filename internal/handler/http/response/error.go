package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance domain errors
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open session to check out of")
	case errors.Is(err, attendance.ErrStaleSession):
		Conflict(w, "Session is stale; check in again")
	case errors.Is(err, attendance.ErrNoMissedCheckout):
		Conflict(w, "No missed checkout to resolve")
	case errors.Is(err, attendance.ErrCheckoutBeforeIn):
		BadRequest(w, "Checkout time must be after check-in", nil)
	case errors.Is(err, attendance.ErrCheckoutInFuture):
		BadRequest(w, "Checkout time cannot be in the future", nil)
	case errors.Is(err, attendance.ErrInvalidResolution):
		BadRequest(w, "Unknown missed checkout resolution", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Profile domain errors
	case errors.Is(err, profile.ErrProfileNotFound):
		NotFound(w, "Profile not synced yet")
	case errors.Is(err, profile.ErrUnknownField):
		BadRequest(w, "Unknown profile field", nil)

	// Settings domain errors
	case errors.Is(err, settings.ErrSettingNotFound):
		NotFound(w, "Setting not found")
	case errors.Is(err, settings.ErrPinNotSet):
		NotFound(w, "Device pin not set")
	case errors.Is(err, settings.ErrPinMismatch):
		Unauthorized(w, "Wrong pin")

	// Sync errors
	case errors.Is(err, syncdomain.ErrSyncInFlight):
		Conflict(w, "A sync cycle is already running")
	case errors.Is(err, syncdomain.ErrAuth):
		Unauthorized(w, "Server rejected the sync credentials")
	case errors.Is(err, syncdomain.ErrValidation):
		BadRequest(w, "Server rejected the sync payload", nil)
	case errors.Is(err, syncdomain.ErrNetwork):
		ServiceUnavailable(w, "Server unreachable; changes stay queued")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
