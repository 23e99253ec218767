// Package metrics registers the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsCreated *prometheus.CounterVec
	RegistrationErrors   *prometheus.CounterVec
	PaymentReversals     prometheus.Counter
	SearchRequests       prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mhr_registrations_created_total",
			Help: "Registrations persisted, by registration type",
		}, []string{"registration_type"}),
		RegistrationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mhr_registration_errors_total",
			Help: "Failed registration attempts, by error code",
		}, []string{"code"}),
		PaymentReversals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mhr_payment_reversals_total",
			Help: "Invoices cancelled because persistence failed after payment",
		}),
		SearchRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mhr_search_requests_total",
			Help: "Registry search and lookup requests served",
		}),
	}
}

// IncRegistrationCreated records a persisted registration of the given type.
func (m *Metrics) IncRegistrationCreated(registrationType string) {
	m.RegistrationsCreated.WithLabelValues(registrationType).Inc()
}

// IncRegistrationError records a failed registration attempt.
func (m *Metrics) IncRegistrationError(code string) {
	m.RegistrationErrors.WithLabelValues(code).Inc()
}
