package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes counted by Metrics.Submissions.
const (
	OutcomeSaved   = "saved"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics holds the collectors of one server.  Each server has its own
// registry so that several can run in one process.
type Metrics struct {
	Registry    *prometheus.Registry
	Submissions *prometheus.CounterVec
	// NestedErrors counts the fields with errors per nested form key (empty
	// key for the parent's own fields).
	NestedErrors *prometheus.CounterVec
}

// NewMetrics creates and registers the service collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestform",
			Name:      "submissions_total",
			Help:      "Form submissions by outcome.",
		}, []string{"outcome"}),
		NestedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestform",
			Name:      "field_errors_total",
			Help:      "Fields with validation errors by nested form.",
		}, []string{"form"}),
	}
	m.Registry.MustRegister(m.Submissions, m.NestedErrors)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
