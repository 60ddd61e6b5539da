package settings

import (
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/validator"
)

type PutRequest struct {
	Value string `json:"value"`
}

func (r *PutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Value) {
		errs = append(errs, validator.ValidationError{
			Field:   "value",
			Message: "value is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
	IsSynced  bool      `json:"is_synced"`
}

func ToResponse(m Mutation) Response {
	return Response{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedAt: m.UpdatedAt,
		IsSynced:  m.IsSynced,
	}
}

type PinRequest struct {
	Pin string `json:"pin"`
}

func (r *PinRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Pin) < 4 || len(r.Pin) > 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin must be 4 to 8 digits",
		})
	}
	for _, c := range r.Pin {
		if c < '0' || c > '9' {
			errs = append(errs, validator.ValidationError{
				Field:   "pin",
				Message: "pin must contain digits only",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
