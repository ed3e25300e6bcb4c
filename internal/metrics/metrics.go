package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's request counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal  *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
}

// New creates and registers the metric set.
func New(service string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "dashboard_http_requests_total",
			Help:        "HTTP requests served, by path pattern and status code",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"path", "status"},
	)

	m.UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "dashboard_upstream_errors_total",
			Help:        "Failed calls to upstream providers, by service",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"upstream"},
	)

	m.registry.MustRegister(m.RequestsTotal, m.UpstreamErrors)
	return m
}

// ObserveRequest counts one served request.
func (m *Metrics) ObserveRequest(path string, status int) {
	m.RequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveUpstreamError counts one failed upstream call.
func (m *Metrics) ObserveUpstreamError(upstream string) {
	m.UpstreamErrors.WithLabelValues(upstream).Inc()
}

// Handler returns the exposition endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
