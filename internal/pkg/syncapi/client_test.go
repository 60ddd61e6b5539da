package syncapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
)

func TestClient_PushAttendanceUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sync/attendance", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req PushAttendanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Records, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    PushAttendanceResponse{Acked: []string{req.Records[0].ClientID}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", time.Second)
	resp, err := c.PushAttendance(context.Background(), PushAttendanceRequest{
		Records: []AttendancePayload{{ClientID: "rec-1", PunchDirection: "IN"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, resp.Acked)
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, syncdomain.ErrAuth},
		{"forbidden", http.StatusForbidden, syncdomain.ErrAuth},
		{"bad request", http.StatusBadRequest, syncdomain.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, syncdomain.ErrValidation},
		{"server error", http.StatusInternalServerError, syncdomain.ErrNetwork},
		{"bad gateway", http.StatusBadGateway, syncdomain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   map[string]string{"code": "ERR", "message": "nope"},
				})
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "test-token", time.Second)
			_, err := c.PushSettings(context.Background(), PushSettingsRequest{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_UnreachableServerIsNetworkError(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, "test-token", time.Second)
	_, err := c.FetchProfile(context.Background(), "dina@cmlabs.co")
	assert.ErrorIs(t, err, syncdomain.ErrNetwork)
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 50*time.Millisecond)
	_, err := c.FetchProfile(context.Background(), "dina@cmlabs.co")
	assert.ErrorIs(t, err, syncdomain.ErrNetwork)
}

func TestClient_FetchProfileQueryEscapesEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dina+hr@cmlabs.co", r.URL.Query().Get("email"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    RemoteProfile{Email: "dina+hr@cmlabs.co", FirstName: "Dina"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", time.Second)
	got, err := c.FetchProfile(context.Background(), "dina+hr@cmlabs.co")
	require.NoError(t, err)
	assert.Equal(t, "Dina", got.FirstName)
}
