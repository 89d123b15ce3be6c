// Package metrics exposes the Prometheus collectors shared by the
// server and the export worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles all collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RateLimitedTotal prometheus.Counter

	SnapshotsCreated  prometheus.Counter
	SnapshotsExported prometheus.Counter
	SnapshotErrors    prometheus.Counter
	KeystrokeBatches  prometheus.Counter
}

// New builds a fresh registry with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "budget_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_http_rate_limited_total",
			Help: "Requests rejected by the write rate limiter.",
		}),
		SnapshotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_snapshots_created_total",
			Help: "Totals snapshots accepted by the API.",
		}),
		SnapshotsExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_snapshots_exported_total",
			Help: "Snapshots successfully appended to the export sink.",
		}),
		SnapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_snapshot_export_errors_total",
			Help: "Snapshot export attempts that failed.",
		}),
		KeystrokeBatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_keystroke_batches_total",
			Help: "Keystroke event batches stored.",
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
