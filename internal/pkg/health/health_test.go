package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ssvp/internal/pkg/metrics"
	"ssvp/internal/pkg/wire"

	"github.com/stretchr/testify/require"
)

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHealth(t *testing.T) {
	srv, err := NewServer()
	require.NoError(t, err)

	rr := get(t, srv.Router(), "/health")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "ssvp", body["service"])
	require.NotEmpty(t, body["uptime"])
}

func TestReady(t *testing.T) {
	ready := false
	srv, err := NewServer(WithReadyCheck(func() bool { return ready }))
	require.NoError(t, err)
	router := srv.Router()

	rr := get(t, router, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	ready = true
	rr = get(t, router, "/ready")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewServer()
	require.NoError(t, err)

	metrics.RecordResponse(wire.CodeOK)
	rr := get(t, srv.Router(), "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "ssvp_responses_total")
}
