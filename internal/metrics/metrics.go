package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal    *prometheus.CounterVec
	backtestDuration  prometheus.Histogram
	combinationsTotal *prometheus.CounterVec
	optimizeDuration  prometheus.Histogram
	workersActive     prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_backtests_total",
				Help: "Total number of completed backtest runs",
			},
			[]string{"strategy", "verdict"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strategist_backtest_duration_seconds",
				Help:    "Single backtest run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		combinationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_optimize_combinations_total",
				Help: "Parameter combinations handled during optimization",
			},
			[]string{"status"},
		),
		optimizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strategist_optimize_duration_seconds",
				Help:    "Full optimization run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		workersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "strategist_optimize_workers_active",
				Help: "Number of optimizer workers currently evaluating",
			},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.combinationsTotal)
	reg.MustRegister(r.optimizeDuration)
	reg.MustRegister(r.workersActive)

	return r
}

// RecordBacktest records a completed backtest run.
func (r *Registry) RecordBacktest(strategy, verdict string, duration float64) {
	r.backtestsTotal.WithLabelValues(strategy, verdict).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordCombination records one grid combination by status ("scored" or
// "skipped").
func (r *Registry) RecordCombination(status string) {
	r.combinationsTotal.WithLabelValues(status).Inc()
}

// RecordOptimizeRun records a full optimization run completion.
func (r *Registry) RecordOptimizeRun(duration float64) {
	r.optimizeDuration.Observe(duration)
}

// WorkerStarted increments the active-worker gauge.
func (r *Registry) WorkerStarted() {
	r.workersActive.Inc()
}

// WorkerDone decrements the active-worker gauge.
func (r *Registry) WorkerDone() {
	r.workersActive.Dec()
}

// Handler returns an HTTP handler exposing the registry in Prometheus text
// format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
