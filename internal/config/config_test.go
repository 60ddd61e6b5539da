package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("SERVER_BASE_URL", "https://hris.example.com")
	t.Setenv("SERVER_API_TOKEN", "provisioned-token")
	t.Setenv("USER_EMAIL", "jane@example.com")
	t.Setenv("USER_ID", "user-1")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4280, cfg.App.Port)
	assert.Equal(t, 9*60, cfg.Shift.StartMinutes)
	assert.Equal(t, 17*60, cfg.Shift.EndMinutes)
	assert.Equal(t, 3, cfg.Shift.StaleThresholdDays)
	assert.Equal(t, 2, cfg.Shift.MissedCheckoutBufferHours)
	assert.Equal(t, "Asia/Jakarta", cfg.Shift.Timezone)
	assert.Equal(t, "12h", cfg.JWT.SessionExpiration)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 15*time.Second, cfg.Sync.Timeout)
	assert.Zero(t, cfg.Geofence.RadiusMeters)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHIFT_START", "22:00")
	t.Setenv("SHIFT_END", "06:00")
	t.Setenv("MISSED_CHECKOUT_BUFFER_HOURS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 22*60, cfg.Shift.StartMinutes)
	assert.Equal(t, 6*60, cfg.Shift.EndMinutes)
	assert.Equal(t, 4, cfg.Shift.MissedCheckoutBufferHours)
}

func TestLoadRequiresServerSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_BASE_URL")
}

func TestLoadRejectsMalformedEmail(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("USER_EMAIL", "not-an-email")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_EMAIL")
}
