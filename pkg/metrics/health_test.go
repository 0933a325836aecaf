package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth() {
	healthChecker = newHealthChecker()
}

func TestReadinessWaitsForStorage(t *testing.T) {
	resetHealth()

	ready := GetReadiness()
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "not registered", ready.Components["storage"])

	UpdateComponent("storage", true, "")
	assert.Equal(t, "ready", GetReadiness().Status)

	UpdateComponent("storage", false, "disk full")
	ready = GetReadiness()
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "not ready: disk full", ready.Components["storage"])
}

func TestHealthHandler(t *testing.T) {
	resetHealth()
	SetVersion("1.2.3")
	UpdateComponent("storage", true, "")

	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)

	UpdateComponent("storage", false, "closed")
	rec = httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewMuxRoutes(t *testing.T) {
	resetHealth()
	mux := NewMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "burrow_templates_total")
}
