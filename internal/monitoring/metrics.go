package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated    prometheus.Counter
	OrdersDispatched prometheus.Counter
	OrdersRejected   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics builds and registers all instruments on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fertidesk_orders_created_total",
			Help: "Orders successfully created.",
		}),
		OrdersDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fertidesk_orders_dispatched_total",
			Help: "Orders moved to the dispatched state.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fertidesk_orders_rejected_total",
			Help: "Order requests rejected, by reason.",
		}, []string{"reason"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fertidesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		m.OrdersCreated,
		m.OrdersDispatched,
		m.OrdersRejected,
		m.RequestDuration,
	)
	return m
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	m.RequestDuration.
		WithLabelValues(method, path, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}
