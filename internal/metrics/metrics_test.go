package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	m := New("test")
	m.ObserveAuth("login", "ok")
	m.ObserveAuth("login", "ok")
	m.ObserveAuth("login", "invalid_credentials")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "invalid_credentials")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveAuth("login", "ok") })
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.RequestCount.WithLabelValues("GET", "/api/health", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}
