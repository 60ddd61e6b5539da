package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/validator"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	Shift    ShiftConfig
	Geofence GeofenceConfig
	Sync     SyncConfig
}

// AppConfig holds agent process configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	UIOrigin string
}

type DatabaseConfig struct {
	Path string
}

// JWTConfig holds local session token configuration
type JWTConfig struct {
	Secret            string
	SessionExpiration string
}

// ServerConfig points the agent at the HRIS server it syncs with
type ServerConfig struct {
	BaseURL   string
	APIToken  string
	UserEmail string
	UserID    string
}

// ShiftConfig holds the provisioned work schedule. Times are minutes of day;
// an end before the start means the shift crosses midnight.
type ShiftConfig struct {
	StartMinutes              int
	EndMinutes                int
	StaleThresholdDays        int
	MissedCheckoutBufferHours int
	Timezone                  string
}

// GeofenceConfig holds the provisioned work area. A zero radius disables
// the check.
type GeofenceConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type SyncConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; the agent can run on real environment
	// variables alone.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("AGENT_PORT", "4280"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		UIOrigin: getEnv("UI_ORIGIN", "http://localhost:3000"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "attendance-agent.db"),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		SessionExpiration: getEnv("JWT_SESSION_EXPIRATION_TIME", "12h"),
	}

	config.Server = ServerConfig{
		BaseURL:   getEnv("SERVER_BASE_URL", ""),
		APIToken:  getEnv("SERVER_API_TOKEN", ""),
		UserEmail: getEnv("USER_EMAIL", ""),
		UserID:    getEnv("USER_ID", ""),
	}

	shiftStart, err := validator.ParseMinutesOfDay(getEnv("SHIFT_START", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIFT_START: %w", err)
	}
	shiftEnd, err := validator.ParseMinutesOfDay(getEnv("SHIFT_END", "17:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIFT_END: %w", err)
	}
	staleDays, err := strconv.Atoi(getEnv("STALE_THRESHOLD_DAYS", "3"))
	if err != nil || staleDays < 1 {
		return nil, fmt.Errorf("invalid STALE_THRESHOLD_DAYS")
	}
	bufferHours, err := strconv.Atoi(getEnv("MISSED_CHECKOUT_BUFFER_HOURS", "2"))
	if err != nil || bufferHours < 0 {
		return nil, fmt.Errorf("invalid MISSED_CHECKOUT_BUFFER_HOURS")
	}

	config.Shift = ShiftConfig{
		StartMinutes:              shiftStart,
		EndMinutes:                shiftEnd,
		StaleThresholdDays:        staleDays,
		MissedCheckoutBufferHours: bufferHours,
		Timezone:                  getEnv("TIMEZONE", "Asia/Jakarta"),
	}

	geoLat, err := strconv.ParseFloat(getEnv("GEOFENCE_LAT", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_LAT: %w", err)
	}
	geoLon, err := strconv.ParseFloat(getEnv("GEOFENCE_LON", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_LON: %w", err)
	}
	geoRadius, err := strconv.ParseFloat(getEnv("GEOFENCE_RADIUS_M", "0"), 64)
	if err != nil || geoRadius < 0 {
		return nil, fmt.Errorf("invalid GEOFENCE_RADIUS_M")
	}

	config.Geofence = GeofenceConfig{
		Latitude:     geoLat,
		Longitude:    geoLon,
		RadiusMeters: geoRadius,
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	syncTimeout, err := time.ParseDuration(getEnv("SYNC_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_TIMEOUT: %w", err)
	}

	config.Sync = SyncConfig{
		Interval: syncInterval,
		Timeout:  syncTimeout,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if c.Server.APIToken == "" {
		return fmt.Errorf("SERVER_API_TOKEN is required")
	}
	if c.Server.UserEmail == "" {
		return fmt.Errorf("USER_EMAIL is required")
	}
	if !validator.IsValidEmail(c.Server.UserEmail) {
		return fmt.Errorf("USER_EMAIL is not a valid email address")
	}
	if c.Server.UserID == "" {
		return fmt.Errorf("USER_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
