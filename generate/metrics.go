package generate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeProvider   = "provider"
	OutcomeParse      = "parse"
	OutcomeEmpty      = "empty"
	OutcomeUnexpected = "unexpected"
)

// Metrics counts generate calls per outcome. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the generate collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bedrockproxy_generate_requests_total",
				Help: "Number of generate requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bedrockproxy_generate_duration_seconds",
				Help:    "Generate request duration by outcome",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Requests returns the counter for one outcome.
func (m *Metrics) Requests(outcome string) prometheus.Counter {
	return m.requests.WithLabelValues(outcome)
}
