package profile

import (
	"time"
)

// Profile is the server-merged view of the employee profile kept locally so
// the UI can render while offline. Email is the primary key.
type Profile struct {
	Email           string
	FirstName       string
	LastName        string
	DateOfBirth     *string // "2006-01-02"
	EmploymentType  string
	Designation     string
	ProfilePhotoURL *string
	LastUpdatedAt   time.Time // newest local edit across fields
	LastSyncedAt    time.Time // server-assigned on last successful push/pull
}

// Editable profile field names. FieldMutation.Property is always one of
// these; the sync coordinator rejects anything else as a validation error.
const (
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldDateOfBirth     = "date_of_birth"
	FieldEmploymentType  = "employment_type"
	FieldDesignation     = "designation"
	FieldProfilePhotoURL = "profile_photo_url"
)

// EditableFields lists every property name a FieldMutation may carry.
var EditableFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldDateOfBirth,
	FieldEmploymentType,
	FieldDesignation,
	FieldProfilePhotoURL,
}

// IsEditableField reports whether name is a known editable property.
func IsEditableField(name string) bool {
	for _, f := range EditableFields {
		if f == name {
			return true
		}
	}
	return false
}

// FieldMutation is one dirty profile field queued for push. There is at most
// one per property name; a newer write to the same property supersedes the
// queued value before any network round-trip.
type FieldMutation struct {
	Property  string
	Value     string
	UpdatedAt time.Time
}

// Field returns the named field's current value as a string.
func (p Profile) Field(name string) string {
	switch name {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldDateOfBirth:
		return deref(p.DateOfBirth)
	case FieldEmploymentType:
		return p.EmploymentType
	case FieldDesignation:
		return p.Designation
	case FieldProfilePhotoURL:
		return deref(p.ProfilePhotoURL)
	}
	return ""
}

// SetField assigns value to the named field. Unknown names are ignored.
func (p *Profile) SetField(name, value string) {
	switch name {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldDateOfBirth:
		p.DateOfBirth = ptr(value)
	case FieldEmploymentType:
		p.EmploymentType = value
	case FieldDesignation:
		p.Designation = value
	case FieldProfilePhotoURL:
		p.ProfilePhotoURL = ptr(value)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
