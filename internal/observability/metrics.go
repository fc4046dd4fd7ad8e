package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors for grade store operations.
type Metrics struct {
	SubmissionsStored *prometheus.CounterVec
	Selections        *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smarticulous_submissions_stored_total",
			Help: "Submission writes by outcome.",
		}, []string{"outcome"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smarticulous_selections_total",
			Help: "Submission selections by policy and outcome.",
		}, []string{"policy", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.SubmissionsStored, m.Selections)
	}
	return m
}

func (m *Metrics) ObserveStore(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsStored.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSelection(policy, outcome string) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(policy, outcome).Inc()
}
