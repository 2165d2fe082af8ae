package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/cold-outreach/internal/core"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTrumailNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want core.VerificationStatus
	}{
		{"deliverable", `{"deliverable":true,"fullInbox":false,"catchAll":false}`, core.VerificationValid},
		{"catch-all", `{"deliverable":false,"fullInbox":false,"catchAll":true}`, core.VerificationCatchAll},
		{"full inbox", `{"deliverable":true,"fullInbox":true,"catchAll":false}`, core.VerificationInvalid},
		{"undeliverable", `{"deliverable":false,"fullInbox":false,"catchAll":false}`, core.VerificationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, tt.body)
			provider := NewTrumail(server.URL, time.Second)

			result, err := provider.Verify(context.Background(), "owner@example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, "owner@example.com", result.Email)
		})
	}
}

func TestTrumailAPIError(t *testing.T) {
	server := jsonServer(t, http.StatusServiceUnavailable, `{}`)
	provider := NewTrumail(server.URL, time.Second)

	result, err := provider.Verify(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, core.VerificationUnknown, result.Status)
}

func newTestHunter(serverURL string) *Hunter {
	return &Hunter{
		client: resty.New().SetTimeout(time.Second),
		apiKey: "test-key",
		apiURL: serverURL,
	}
}

func TestHunterNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want core.VerificationStatus
	}{
		{"valid status", `{"data":{"status":"valid","score":50}}`, core.VerificationValid},
		{"high score wins", `{"data":{"status":"unknown","score":85}}`, core.VerificationValid},
		{"accept-all", `{"data":{"status":"accept_all","score":50}}`, core.VerificationCatchAll},
		{"invalid status", `{"data":{"status":"invalid","score":50}}`, core.VerificationInvalid},
		{"low score", `{"data":{"status":"unknown","score":10}}`, core.VerificationInvalid},
		{"middling score", `{"data":{"status":"webmail","score":50}}`, core.VerificationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, tt.body)
			provider := newTestHunter(server.URL)

			result, err := provider.Verify(context.Background(), "owner@example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestHunterInvalidAPIKey(t *testing.T) {
	server := jsonServer(t, http.StatusUnauthorized, `{}`)
	provider := newTestHunter(server.URL)

	result, err := provider.Verify(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, core.VerificationUnknown, result.Status)
	assert.Contains(t, result.Message, "invalid API key")
}
