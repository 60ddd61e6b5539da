package sync

import (
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
)

// Category identifies which entity family a mutation or sync error belongs
// to. Failures in one category never abort the other two.
type Category string

const (
	CategoryProfile    Category = "profile"
	CategoryAttendance Category = "attendance"
	CategorySettings   Category = "settings"
)

// Mutation is a locally queued change awaiting acknowledgement. It is a
// closed union over the three entity categories; the coordinator dispatches
// on the concrete type, so a new category is a compile-time visible change.
type Mutation interface {
	Category() Category
}

type ProfileMutation struct {
	profile.FieldMutation
}

func (ProfileMutation) Category() Category { return CategoryProfile }

type AttendanceMutation struct {
	attendance.Record
}

func (AttendanceMutation) Category() Category { return CategoryAttendance }

type SettingMutation struct {
	settings.Mutation
}

func (SettingMutation) Category() Category { return CategorySettings }

// MaxErrors caps the retained sync error list; the oldest entry is evicted
// first.
const MaxErrors = 10

// SyncError is one failed sync operation surfaced to the UI.
type SyncError struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      Category  `json:"type"`
}

// UnsyncedItems groups every queued mutation by category.
type UnsyncedItems struct {
	Profile    []profile.FieldMutation `json:"profile"`
	Attendance []attendance.Record     `json:"attendance"`
	Settings   []settings.Mutation     `json:"settings"`
}

// Count returns the total number of queued mutations.
func (u UnsyncedItems) Count() int {
	return len(u.Profile) + len(u.Attendance) + len(u.Settings)
}

// State is the observable sync status. The coordinator replaces it as a
// whole object; observers never see a half-updated state.
type State struct {
	IsSyncing  bool          `json:"is_syncing"`
	LastSyncAt *time.Time    `json:"last_sync_at"`
	SyncErrors []SyncError   `json:"sync_errors"`
	Unsynced   UnsyncedItems `json:"unsynced_items"`
}

// AppendError returns a copy of errs with e appended, evicting the oldest
// entries beyond MaxErrors.
func AppendError(errs []SyncError, e SyncError) []SyncError {
	out := make([]SyncError, len(errs), len(errs)+1)
	copy(out, errs)
	out = append(out, e)
	if len(out) > MaxErrors {
		out = out[len(out)-MaxErrors:]
	}
	return out
}
