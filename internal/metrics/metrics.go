// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripsplit"

// Metrics is a set of collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests         *prometheus.CounterVec
	rpcDuration         *prometheus.HistogramVec
	duplicateWarnings   prometheus.Counter
	emptySplits         prometheus.Counter
	settlementTransfers prometheus.Histogram
}

// New registers every collector, plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		duplicateWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_expense_warnings_total",
			Help:      "Expenses stored while resembling an existing one.",
		}),
		emptySplits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_split_expenses_total",
			Help:      "Expenses skipped during balance calculation because no targets resolved.",
		}),
		settlementTransfers: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transfers",
			Help:      "Number of transfers produced per settlement computation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// DuplicateWarning counts a stored expense flagged as a likely duplicate.
func (m *Metrics) DuplicateWarning() {
	if m == nil {
		return
	}
	m.duplicateWarnings.Inc()
}

// EmptySplits counts expenses skipped for having no split targets.
func (m *Metrics) EmptySplits(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.emptySplits.Add(float64(n))
}

// SettlementTransfers records the size of a computed settlement plan.
func (m *Metrics) SettlementTransfers(n int) {
	if m == nil {
		return
	}
	m.settlementTransfers.Observe(float64(n))
}
