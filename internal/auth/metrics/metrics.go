// Package metrics provides Prometheus metrics for the auth domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all auth domain metrics.
type Metrics struct {
	Registrations prometheus.Counter
	Logins        prometheus.Counter
	LoginFailures prometheus.Counter
	Lockouts      prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_auth_registrations_total",
			Help: "Total accounts registered",
		}),

		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_auth_logins_total",
			Help: "Total successful logins",
		}),

		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_auth_login_failures_total",
			Help: "Total rejected login attempts",
		}),

		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemolink_auth_lockouts_total",
			Help: "Total logins refused because the account/IP pair was locked out",
		}),
	}
}

// RecordRegistration records a newly created account.
func (m *Metrics) RecordRegistration() {
	m.Registrations.Inc()
}

// RecordLogin records a successful login.
func (m *Metrics) RecordLogin() {
	m.Logins.Inc()
}

// RecordLoginFailure records a rejected login attempt.
func (m *Metrics) RecordLoginFailure() {
	m.LoginFailures.Inc()
}

// RecordLockout records a login refused by the lockout policy.
func (m *Metrics) RecordLockout() {
	m.Lockouts.Inc()
}
