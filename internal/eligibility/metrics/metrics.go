// Package metrics provides Prometheus metrics for the eligibility pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all eligibility scoring metrics.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec // Evaluations by scoring source (local, remote)
	FallbacksTotal   *prometheus.CounterVec // Remote failures by operation (predict, normalize, override)
	OverridesTotal   *prometheus.CounterVec // Override judgments by outcome (overridden, passed)

	RemoteRequestDuration prometheus.Histogram // Latency of successful inference calls
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemolink_eligibility_evaluations_total",
			Help: "Total eligibility evaluations by scoring source",
		}, []string{"source"}),

		FallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemolink_eligibility_fallbacks_total",
			Help: "Total falls back to local rules by failed remote operation",
		}, []string{"operation"}),

		OverridesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemolink_eligibility_overrides_total",
			Help: "Total free-text eligibility judgments by outcome",
		}, []string{"outcome"}),

		RemoteRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemolink_inference_request_duration_seconds",
			Help:    "Duration of successful inference service calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
	}
}

// RecordEvaluation records a completed evaluation for the given source.
func (m *Metrics) RecordEvaluation(source string) {
	m.EvaluationsTotal.WithLabelValues(source).Inc()
}

// RecordFallback records a remote failure for the given operation.
func (m *Metrics) RecordFallback(operation string) {
	m.FallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordOverride records an override judgment outcome.
func (m *Metrics) RecordOverride(overridden bool) {
	outcome := "passed"
	if overridden {
		outcome = "overridden"
	}
	m.OverridesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRemoteDuration records the duration of a successful inference call.
func (m *Metrics) ObserveRemoteDuration(seconds float64) {
	m.RemoteRequestDuration.Observe(seconds)
}
