package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsExported(t *testing.T) {
	m := NewMetrics()

	m.OrdersCreated.Inc()
	m.OrdersCreated.Inc()
	m.OrdersDispatched.Inc()
	m.OrdersRejected.WithLabelValues("validation").Inc()
	m.ObserveRequest(http.MethodPost, "/api/orders", http.StatusCreated, 25*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, "fertidesk_orders_created_total 2")
	assert.Contains(t, body, "fertidesk_orders_dispatched_total 1")
	assert.Contains(t, body, `fertidesk_orders_rejected_total{reason="validation"} 1`)
	assert.Contains(t, body, `fertidesk_http_request_duration_seconds_count{method="POST",path="/api/orders",status="201"} 1`)
}

func TestObserveRequestUnmatchedPath(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `path="unmatched"`)
}
