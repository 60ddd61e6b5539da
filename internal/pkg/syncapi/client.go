package syncapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
)

// Client talks to the HRIS server's sync endpoints. Every request carries a
// bounded timeout; a timeout is indistinguishable from an unreachable server
// and surfaces as a network error, so pushes must be idempotent on the
// identifying key.
type Client struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		baseURL:   baseURL,
		token:     token,
		userAgent: "attendance-agent/1.0",
	}
}

// SetToken replaces the bearer token after re-authentication.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ProfileField is one pushed or returned profile property.
type ProfileField struct {
	Property  string    `json:"property"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PushProfileRequest struct {
	Email  string         `json:"email"`
	Fields []ProfileField `json:"fields"`
}

type PushProfileResponse struct {
	LastSyncedAt time.Time      `json:"last_synced_at"`
	Fields       []ProfileField `json:"fields"`
}

// AttendancePayload mirrors one punch record on the wire. ClientID is the
// device-generated record ID the server acks back and dedupes on.
type AttendancePayload struct {
	ClientID         string    `json:"client_id"`
	Timestamp        time.Time `json:"timestamp"`
	PunchDirection   string    `json:"punch_direction"`
	PunchType        string    `json:"punch_type"`
	AttendanceStatus *string   `json:"attendance_status,omitempty"`
	DateOfPunch      string    `json:"date_of_punch"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Address          *string   `json:"address,omitempty"`
	RequiresApproval bool      `json:"requires_approval"`
}

type PushAttendanceRequest struct {
	Records []AttendancePayload `json:"records"`
}

type PushAttendanceResponse struct {
	Acked []string `json:"acked"`
}

type SettingEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PushSettingsRequest struct {
	Entries []SettingEntry `json:"entries"`
}

type PushSettingsResponse struct {
	Acked []string `json:"acked"`
}

// RemoteProfile is the server's authoritative profile view.
type RemoteProfile struct {
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	DateOfBirth     *string   `json:"date_of_birth"`
	EmploymentType  string    `json:"employment_type"`
	Designation     string    `json:"designation"`
	ProfilePhotoURL *string   `json:"profile_photo_url"`
	LastSyncedAt    time.Time `json:"last_synced_at"`
}

// PushProfile pushes dirty profile fields and returns the server's merged
// view with its new last_synced_at.
func (c *Client) PushProfile(ctx context.Context, req PushProfileRequest) (PushProfileResponse, error) {
	var out PushProfileResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sync/profile", req, &out); err != nil {
		return PushProfileResponse{}, err
	}
	return out, nil
}

// PushAttendance pushes unsynced punch records; the server acks the client
// IDs it has durably stored (including ones it already had).
func (c *Client) PushAttendance(ctx context.Context, req PushAttendanceRequest) (PushAttendanceResponse, error) {
	var out PushAttendanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sync/attendance", req, &out); err != nil {
		return PushAttendanceResponse{}, err
	}
	return out, nil
}

// PushSettings pushes unsynced setting entries; the server acks stored keys.
func (c *Client) PushSettings(ctx context.Context, req PushSettingsRequest) (PushSettingsResponse, error) {
	var out PushSettingsResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sync/settings", req, &out); err != nil {
		return PushSettingsResponse{}, err
	}
	return out, nil
}

// FetchProfile pulls the server's profile view.
func (c *Client) FetchProfile(ctx context.Context, email string) (RemoteProfile, error) {
	var out RemoteProfile
	path := "/api/v1/sync/profile?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return RemoteProfile{}, err
	}
	return out, nil
}

// envelope is the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request: %v", syncdomain.ErrValidation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", syncdomain.ErrValidation, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and unreachable hosts both land here.
		return fmt.Errorf("%w: %v", syncdomain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", syncdomain.ErrNetwork, err)
	}

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		raw = env.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", syncdomain.ErrNetwork, err)
	}

	return nil
}

// classifyStatus maps HTTP status codes onto the sync failure taxonomy.
func classifyStatus(status int, raw []byte) error {
	if status < 400 {
		return nil
	}

	message := serverMessage(raw)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: server returned %d: %s", syncdomain.ErrAuth, status, message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: server rejected payload (%d): %s", syncdomain.ErrValidation, status, message)
	default:
		// 5xx and anything unexpected: treat as transient, keep items queued.
		return fmt.Errorf("%w: server returned %d: %s", syncdomain.ErrNetwork, status, message)
	}
}

func serverMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return env.Error.Message
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
