// Package metrics holds the Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps services usable without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CompletionAttempts *prometheus.CounterVec
	CompletionOutcomes *prometheus.CounterVec
	GateDecisions      *prometheus.CounterVec
	SummaryOutcomes    *prometheus.CounterVec
	VentSessions       prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CompletionAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journai_completion_attempts_total",
			Help: "Completion service calls by operation and result (ok, rejected, error)",
		}, []string{"operation", "result"}),

		CompletionOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journai_completion_outcomes_total",
			Help: "Final outcome per orchestrated request (accepted, exhausted, fallback)",
		}, []string{"operation", "outcome"}),

		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journai_gate_decisions_total",
			Help: "Gate decisions by check and result",
		}, []string{"check", "result"}),

		SummaryOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journai_weekly_summary_total",
			Help: "Weekly summary requests by outcome (cached, generated, empty, degraded)",
		}, []string{"outcome"}),

		VentSessions: f.NewCounter(prometheus.CounterOpts{
			Name: "journai_vent_sessions_created_total",
			Help: "Vent sessions persisted for the first time",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journai_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "journai_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) Attempt(op, result string) {
	if m == nil {
		return
	}
	m.CompletionAttempts.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Outcome(op, outcome string) {
	if m == nil {
		return
	}
	m.CompletionOutcomes.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Gate(check string, allowed bool) {
	if m == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.GateDecisions.WithLabelValues(check, result).Inc()
}

func (m *Metrics) Summary(outcome string) {
	if m == nil {
		return
	}
	m.SummaryOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) VentSessionCreated() {
	if m == nil {
		return
	}
	m.VentSessions.Inc()
}

func (m *Metrics) ObserveHTTP(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(seconds)
}
