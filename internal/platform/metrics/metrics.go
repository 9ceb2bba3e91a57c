// Package metrics holds transport-level Prometheus metrics. Domain
// collectors live in their own metrics packages next to each service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes the HTTP surface as a whole.
type Metrics struct {
	EndpointLatency  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates and registers the transport metrics.
func New() *Metrics {
	return &Metrics{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hemolink_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hemolink_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// ObserveEndpointLatency records the latency for a given endpoint. The label
// should be the route pattern, not the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

// TrackInFlight brackets one in-flight request.
func (m *Metrics) TrackInFlight() func() {
	m.RequestsInFlight.Inc()
	return m.RequestsInFlight.Dec
}
