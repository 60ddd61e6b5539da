package attendance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-agent-go/internal/repository/sqlite"
)

func newServiceForTest(t *testing.T) (*ServiceImpl, attendance.Repository) {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	repo := sqlite.NewAttendanceRepository(db)
	return NewService(repo, dayShift(), attendance.Geofence{}), repo
}

func TestService_PunchOutsideGeofenceFlagsApproval(t *testing.T) {
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	// Office at Monas, 200m radius.
	fence := attendance.Geofence{Latitude: -6.1754, Longitude: 106.8272, RadiusMeters: 200}
	svc := NewService(sqlite.NewAttendanceRepository(db), dayShift(), fence)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	nearLat, nearLon := -6.1755, 106.8273
	in, err := svc.Punch(ctx, attendance.PunchRequest{
		Direction: attendance.DirectionIn,
		Latitude:  &nearLat,
		Longitude: &nearLon,
	})
	require.NoError(t, err)
	assert.False(t, in.RequiresApproval)
	assert.Nil(t, in.AttendanceStatus)

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC) }
	farLat, farLon := -6.2607, 106.7816
	out, err := svc.Punch(ctx, attendance.PunchRequest{
		Direction: attendance.DirectionOut,
		Latitude:  &farLat,
		Longitude: &farLon,
	})
	require.NoError(t, err)
	assert.True(t, out.RequiresApproval, "punch far from the work area needs approval")
	require.NotNil(t, out.AttendanceStatus)
	assert.Equal(t, "OUT_OF_AREA", *out.AttendanceStatus)
}

func TestService_PunchInThenOut(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	in, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.DirectionIn), in.PunchDirection)
	assert.Equal(t, "2026-03-10", in.DateOfPunch)
	assert.NotEmpty(t, in.ID)

	svc.now = func() time.Time { return at.Add(8 * time.Hour) }
	out, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionOut})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.DirectionOut), out.PunchDirection)
}

func TestService_DoubleCheckInRejected(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	svc.now = func() time.Time { return at.Add(time.Hour) }
	_, err = svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestService_CheckOutWithoutOpenSession(t *testing.T) {
	svc, _ := newServiceForTest(t)

	_, err := svc.Punch(context.Background(), attendance.PunchRequest{Direction: attendance.DirectionOut})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestService_StaleSessionForcesCheckIn(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	svc.now = func() time.Time { return at.Add(4 * 24 * time.Hour) }

	_, err = svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionOut})
	assert.ErrorIs(t, err, attendance.ErrStaleSession)

	_, err = svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	assert.NoError(t, err, "a fresh check-in is the only way out of a stale session")
}

func TestService_StatusReportsUnsyncedCount(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	svc.now = func() time.Time { return at.Add(time.Hour) }
	status, err := svc.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, attendance.ButtonCheckOut, status.ButtonType)
	assert.Equal(t, attendance.DayPartial, status.DayStatus)
	assert.True(t, status.DayStatusIsOpen)
	assert.Equal(t, 1, status.UnsyncedCount)
}

func TestService_ResolveMissedCheckoutRequiresMissedState(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	// Still mid-shift: nothing to resolve.
	svc.now = func() time.Time { return at.Add(2 * time.Hour) }
	_, err = svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option: attendance.ResolveCheckoutNow,
	})
	assert.ErrorIs(t, err, attendance.ErrNoMissedCheckout)
}

func TestService_ResolveMissedCheckoutNow(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	resolvedAt := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return resolvedAt }

	rec, err := svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option: attendance.ResolveCheckoutNow,
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.DirectionOut), rec.PunchDirection)
	assert.Equal(t, string(attendance.PunchTypeRegular), rec.PunchType)
	assert.False(t, rec.RequiresApproval, "checking out now needs no approval")
	assert.Equal(t, resolvedAt, rec.Timestamp.UTC())
}

func TestService_ResolveMissedCheckoutPickTime(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	before := at.Add(-time.Hour)
	_, err = svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option:     attendance.ResolvePickTime,
		PickedTime: &before,
	})
	assert.ErrorIs(t, err, attendance.ErrCheckoutBeforeIn)

	future := now.Add(time.Hour)
	_, err = svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option:     attendance.ResolvePickTime,
		PickedTime: &future,
	})
	assert.ErrorIs(t, err, attendance.ErrCheckoutInFuture)

	picked := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	rec, err := svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option:     attendance.ResolvePickTime,
		PickedTime: &picked,
	})
	require.NoError(t, err)
	assert.True(t, rec.RequiresApproval)
	assert.Equal(t, picked, rec.Timestamp.UTC())
}

func TestService_ResolveMissedCheckoutAutoShiftEnd(t *testing.T) {
	svc, _ := newServiceForTest(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	_, err := svc.Punch(ctx, attendance.PunchRequest{Direction: attendance.DirectionIn})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC) }
	rec, err := svc.ResolveMissedCheckout(ctx, attendance.ResolveMissedCheckoutRequest{
		Option: attendance.ResolveAutoShiftEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.PunchTypeAuto), rec.PunchType)
	assert.True(t, rec.RequiresApproval)
	assert.Equal(t, time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC), rec.Timestamp.UTC())

	// The auto checkout closes the session; the next action is a check-in.
	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.ButtonCheckIn, status.ButtonType)
}
