package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtapulse/internal/services"
	"mtapulse/internal/shared/testutil"
	"mtapulse/pkg/contracts"
)

func newHealthRouter(t *testing.T, clients services.ClientCounter) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hs := services.NewHealthService(newDashboardService(t), clients, logger)

	r := chi.NewRouter()
	r.Route("/api", NewHealthHandler(hs, logger).Routes)
	return r
}

func TestHealthHandler(t *testing.T) {
	counter := &services.MockClientCounter{}
	counter.On("ClientCount").Return(1)
	router := newHealthRouter(t, counter)

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
		expectedKey    string
		expectedValue  interface{}
	}{
		{name: "health", endpoint: "/api/health", expectedStatus: http.StatusOK, expectedKey: "status", expectedValue: "ok"},
		{name: "ready", endpoint: "/api/health/ready", expectedStatus: http.StatusOK, expectedKey: "status", expectedValue: "ready"},
		{name: "live", endpoint: "/api/health/live", expectedStatus: http.StatusOK, expectedKey: "status", expectedValue: "alive"},
		{name: "version", endpoint: "/api/version", expectedStatus: http.StatusOK, expectedKey: "version", expectedValue: contracts.Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(router, tt.endpoint)
			require.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedValue, body[tt.expectedKey])
		})
	}
}

func TestHealthHandler_Detailed(t *testing.T) {
	counter := &services.MockClientCounter{}
	counter.On("ClientCount").Return(2)

	rec := doGet(newHealthRouter(t, counter), "/api/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Health    services.HealthStatus `json:"health"`
		Readiness services.HealthStatus `json:"readiness"`
		Stats     services.SystemStats  `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Health.Status)
	assert.Equal(t, "ready", body.Readiness.Status)
	assert.Equal(t, 2, body.Stats.WebSocketClients)
	assert.Positive(t, body.Stats.Records)
}

func TestHealthHandler_NotReady(t *testing.T) {
	rec := doGet(newHealthRouter(t, nil), "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}
