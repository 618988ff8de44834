// Package metrics provides optional Prometheus instrumentation for a
// client.Client: counters and histograms registered via promauto,
// scoped down to what matters for an RPC client — requests,
// notifications, and connection lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the Prometheus-backed instrumentation a Client optionally
// reports to, supplied via client.WithMetrics. A nil *Metrics is valid
// everywhere below and every method becomes a no-op, so embedders that
// don't pass WithMetrics never pay for registration.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDurationMs  *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	connectsTotal      *prometheus.CounterVec
	disconnectsTotal   prometheus.Counter
	pendingGauge       prometheus.Gauge
}

// New registers a fresh set of metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer for a process-wide one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nvimrpc_requests_total",
			Help: "Total number of RPC requests by method and outcome",
		}, []string{"method", "outcome"}), // outcome: "ok", "nvim_error", "transport_error"
		requestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "nvimrpc_request_duration_milliseconds",
			Help: "Duration of RPC requests in milliseconds",
			Buckets: []float64{
				0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000,
			},
		}, []string{"method"}),
		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nvimrpc_notifications_total",
			Help: "Total number of RPC notifications sent, by method",
		}, []string{"method"}),
		connectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nvimrpc_connects_total",
			Help: "Total number of connect attempts by outcome",
		}, []string{"outcome"}), // "ok", "error"
		disconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "nvimrpc_disconnects_total",
			Help: "Total number of disconnects",
		}),
		pendingGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nvimrpc_pending_requests",
			Help: "Number of requests currently awaiting a response",
		}),
	}
}

// ObserveRequest records one completed request's method, outcome, and
// duration. m may be nil.
func (m *Metrics) ObserveRequest(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDurationMs.WithLabelValues(method).Observe(float64(d.Milliseconds()))
}

// ObserveNotification records one sent notification. m may be nil.
func (m *Metrics) ObserveNotification(method string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(method).Inc()
}

// ObserveConnect records one connect attempt's outcome. m may be nil.
func (m *Metrics) ObserveConnect(outcome string) {
	if m == nil {
		return
	}
	m.connectsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDisconnect records one disconnect. m may be nil.
func (m *Metrics) ObserveDisconnect() {
	if m == nil {
		return
	}
	m.disconnectsTotal.Inc()
}

// SetPending reports the current count of outstanding requests. m may
// be nil.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pendingGauge.Set(float64(n))
}
