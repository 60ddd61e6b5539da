package profile

import (
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/validator"
)

type UpdateRequest struct {
	// Fields maps editable property names to their new values.
	Fields map[string]string `json:"fields"`
}

func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Fields) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "fields",
			Message: "at least one field is required",
		})
	}

	for name, value := range r.Fields {
		if !IsEditableField(name) {
			errs = append(errs, validator.ValidationError{
				Field:   name,
				Message: "unknown profile field",
			})
			continue
		}
		if name == FieldDateOfBirth && value != "" {
			if _, ok := validator.IsValidDate(value); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   name,
					Message: "date_of_birth must be YYYY-MM-DD",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	DateOfBirth     *string   `json:"date_of_birth,omitempty"`
	EmploymentType  string    `json:"employment_type"`
	Designation     string    `json:"designation"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	LastUpdatedAt   time.Time `json:"last_updated_at"`
	LastSyncedAt    time.Time `json:"last_synced_at"`
	PendingFields   []string  `json:"pending_fields"`
}

func ToResponse(p Profile, pending []FieldMutation) Response {
	names := make([]string, 0, len(pending))
	for _, m := range pending {
		names = append(names, m.Property)
	}
	return Response{
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DateOfBirth:     p.DateOfBirth,
		EmploymentType:  p.EmploymentType,
		Designation:     p.Designation,
		ProfilePhotoURL: p.ProfilePhotoURL,
		LastUpdatedAt:   p.LastUpdatedAt,
		LastSyncedAt:    p.LastSyncedAt,
		PendingFields:   names,
	}
}
