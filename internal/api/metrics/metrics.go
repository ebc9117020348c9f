// Package metrics defines the application's custom Prometheus metrics.
//
// Metrics are registered on the registry passed to New, so every router (and
// every test) can own an isolated registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "starterpack"

// Result label values.
const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultError    = "error"
)

type Metrics struct {
	// RegistrationsTotal counts registration attempts by result.
	RegistrationsTotal *prometheus.CounterVec
	// LoginsTotal counts login attempts by result.
	LoginsTotal *prometheus.CounterVec
	// LogoutsTotal counts completed logouts.
	LogoutsTotal prometheus.Counter
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts, by result.",
		}, []string{"result"}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		LogoutsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Total number of logouts.",
		}),
	}
}
