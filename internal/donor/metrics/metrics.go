// Package metrics provides Prometheus metrics for the donor domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all donor domain metrics.
type Metrics struct {
	DonorsCreated       prometheus.Counter
	ProfileUpdatesTotal prometheus.Counter
	AvailabilityToggles prometheus.Counter

	ListScoringDuration prometheus.Histogram // Latency of scoring a full donor listing
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		DonorsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_donors_created_total",
			Help: "Total donor profiles created",
		}),

		ProfileUpdatesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_donor_profile_updates_total",
			Help: "Total donor profile updates",
		}),

		AvailabilityToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_donor_availability_toggles_total",
			Help: "Total donor availability changes",
		}),

		ListScoringDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemolink_donor_list_scoring_duration_seconds",
			Help:    "Duration of scoring a full donor listing",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
	}
}

// RecordDonorCreated records a new donor profile.
func (m *Metrics) RecordDonorCreated() {
	m.DonorsCreated.Inc()
}

// RecordProfileUpdate records a donor profile update.
func (m *Metrics) RecordProfileUpdate() {
	m.ProfileUpdatesTotal.Inc()
}

// RecordAvailabilityToggle records an availability change.
func (m *Metrics) RecordAvailabilityToggle() {
	m.AvailabilityToggles.Inc()
}

// ObserveListScoring records the duration of a scored listing.
func (m *Metrics) ObserveListScoring(seconds float64) {
	m.ListScoringDuration.Observe(seconds)
}
