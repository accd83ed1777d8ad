package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the coordination events the dashboard and alerts care
// about.
type Metrics struct {
	StatusTransitions *prometheus.CounterVec
	LocationsRecorded prometheus.Counter
	ClaimConflicts    prometheus.Counter
}

// New registers the collectors on reg (the default registerer when nil),
// reusing collectors that are already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_status_transitions_total",
		Help: "Total number of report status transitions",
	}, []string{"status"})
	locations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driver_locations_recorded_total",
		Help: "Total number of driver location samples recorded",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vehicle_claim_conflicts_total",
		Help: "Total number of vehicle claims rejected because the vehicle was not available",
	})

	if err := reg.Register(transitions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			transitions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(locations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			locations = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(conflicts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			conflicts = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &Metrics{
		StatusTransitions: transitions,
		LocationsRecorded: locations,
		ClaimConflicts:    conflicts,
	}, nil
}
