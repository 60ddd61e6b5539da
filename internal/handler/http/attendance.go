package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ResolveMissedCheckout(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Punch implements AttendanceHandler.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode punch request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Punch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded", result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	filter := attendance.HistoryFilter{Limit: 50}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 200 {
			response.BadRequest(w, "limit must be between 1 and 200", nil)
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			response.BadRequest(w, "offset must not be negative", nil)
			return
		}
		filter.Offset = offset
	}

	result, err := h.attendanceService.History(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		TotalItems: result.TotalItems,
	})
}

// ResolveMissedCheckout implements AttendanceHandler.
func (h *attendanceHandlerImpl) ResolveMissedCheckout(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResolveMissedCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode missed checkout request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ResolveMissedCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Missed checkout resolved", result)
}
