// Package metrics holds the domain Prometheus collectors. A nil *Comparison records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeRejected  = "rejected"
	OutcomeShape     = "shape_error"
)

// Comparison tracks model attempts, comparison results and rate-limit decisions.
type Comparison struct {
	attempts    *prometheus.CounterVec
	comparisons *prometheus.CounterVec
	duration    prometheus.Histogram
	rateLimit   *prometheus.CounterVec
}

// NewComparison registers the collectors on reg.
func NewComparison(reg prometheus.Registerer) (*Comparison, error) {
	m := &Comparison{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparison_attempts_total",
				Help: "Model invocations made by the comparison retry loop, by outcome.",
			},
			[]string{"outcome"},
		),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparisons_total",
				Help: "Completed comparisons, by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "comparison_duration_seconds",
			Help:    "Wall time of a comparison including retries.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
		}),
		rateLimit: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_decisions_total",
				Help: "Rate limiter decisions for comparison requests.",
			},
			[]string{"decision"},
		),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.comparisons, m.duration, m.rateLimit} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveAttempt counts one model invocation.
func (m *Comparison) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

// ObserveComparison records a finished comparison.
func (m *Comparison) ObserveComparison(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.comparisons.WithLabelValues(result).Inc()
	m.duration.Observe(d.Seconds())
}

// ObserveRateLimit records an allow/deny decision.
func (m *Comparison) ObserveRateLimit(allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.rateLimit.WithLabelValues(decision).Inc()
}
