package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all blood-request metrics.
type Metrics struct {
	Created   prometheus.Counter
	Fulfilled prometheus.Counter
	Expired   prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_requests_created_total",
			Help: "Total blood requests created",
		}),

		Fulfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_requests_fulfilled_total",
			Help: "Total blood requests fulfilled",
		}),

		Expired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_requests_expired_total",
			Help: "Total blood requests expired by the sweep",
		}),
	}
}

// RecordCreated records a new blood request.
func (m *Metrics) RecordCreated() {
	m.Created.Inc()
}

// RecordFulfilled records a fulfilled blood request.
func (m *Metrics) RecordFulfilled() {
	m.Fulfilled.Inc()
}

// AddExpired records requests transitioned by an expiry sweep.
func (m *Metrics) AddExpired(n int) {
	m.Expired.Add(float64(n))
}
