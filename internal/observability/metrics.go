package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics for the seflow service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// --- Splits ---
	SplitsSubmitted *prometheus.CounterVec
	SplitsRejected  *prometheus.CounterVec
	SplitVolume     prometheus.Counter
	RewardsMinted   prometheus.Counter

	// --- Yield ---
	CompoundsExecuted *prometheus.CounterVec
	YieldCompounded   prometheus.Counter
	AutoCompoundRuns  *prometheus.CounterVec

	// --- History ---
	HistoryFallbacks *prometheus.CounterVec

	// --- RPC ---
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SplitsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_splits_submitted_total",
			Help: "Salary splits executed successfully",
		}, []string{"locked"}),

		SplitsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_splits_rejected_total",
			Help: "Salary splits rejected before or during submission",
		}, []string{"reason"}),

		SplitVolume: factory.NewCounter(prometheus.CounterOpts{
			Name: "seflow_split_volume_flow_total",
			Help: "Total FLOW processed by executed splits",
		}),

		RewardsMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "seflow_rewards_minted_froth_total",
			Help: "Total FROTH minted as split rewards",
		}),

		CompoundsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_compounds_executed_total",
			Help: "LP yield compounds by trigger",
		}, []string{"trigger"}),

		YieldCompounded: factory.NewCounter(prometheus.CounterOpts{
			Name: "seflow_yield_compounded_flow_total",
			Help: "Total FLOW yield moved into LP vaults",
		}),

		AutoCompoundRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_auto_compound_runs_total",
			Help: "Scheduled auto-compound tasks by result",
		}, []string{"result"}),

		HistoryFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_history_fallbacks_total",
			Help: "History lookups served by a fallback source",
		}, []string{"source"}),

		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seflow_rpc_requests_total",
			Help: "gRPC requests by method and status code",
		}, []string{"method", "code"}),

		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seflow_rpc_duration_seconds",
			Help:    "gRPC request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests use it to gather values)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SplitSubmitted records an executed split
func (m *Metrics) SplitSubmitted(locked bool, total, reward decimal.Decimal) {
	if m == nil {
		return
	}
	label := "false"
	if locked {
		label = "true"
	}
	m.SplitsSubmitted.WithLabelValues(label).Inc()
	m.SplitVolume.Add(total.InexactFloat64())
	m.RewardsMinted.Add(reward.InexactFloat64())
}

// SplitRejected records a rejected split
func (m *Metrics) SplitRejected(reason string) {
	if m == nil {
		return
	}
	m.SplitsRejected.WithLabelValues(reason).Inc()
}

// Compounded records an executed yield compound
func (m *Metrics) Compounded(automatic bool, yield decimal.Decimal) {
	if m == nil {
		return
	}
	trigger := "manual"
	if automatic {
		trigger = "auto"
	}
	m.CompoundsExecuted.WithLabelValues(trigger).Inc()
	m.YieldCompounded.Add(yield.InexactFloat64())
}

// AutoCompoundRun records the outcome of one scheduled compound task
func (m *Metrics) AutoCompoundRun(result string) {
	if m == nil {
		return
	}
	m.AutoCompoundRuns.WithLabelValues(result).Inc()
}

// HistoryFallback records a history lookup served by source
func (m *Metrics) HistoryFallback(source string) {
	if m == nil {
		return
	}
	m.HistoryFallbacks.WithLabelValues(source).Inc()
}

// ObserveRPC records one finished gRPC call
func (m *Metrics) ObserveRPC(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(method, code).Inc()
	m.RPCDuration.WithLabelValues(method).Observe(seconds)
}
