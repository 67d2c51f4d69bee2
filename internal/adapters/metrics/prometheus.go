package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"venuebooking/internal/domain"
)

const namespace = "venuebooking"

type prometheusRecorder struct {
	registrations *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// NewPrometheusRecorder registers the booking counters with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) domain.BookingMetrics {
	factory := promauto.With(reg)
	return &prometheusRecorder{
		registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Roster registration attempts by role and outcome",
			},
			[]string{"role", "outcome"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_transitions_total",
				Help:      "Event review decisions by requested status and outcome",
			},
			[]string{"status", "outcome"},
		),
	}
}

func (r *prometheusRecorder) RecordRegistration(role domain.RosterRole, outcome string) {
	r.registrations.WithLabelValues(string(role), outcome).Inc()
}

func (r *prometheusRecorder) RecordTransition(status domain.EventStatus, outcome string) {
	r.transitions.WithLabelValues(string(status), outcome).Inc()
}
