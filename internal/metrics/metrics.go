package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Checkout holds the counters and histograms the checkout pipeline reports to.
type Checkout struct {
	Outcomes *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewCheckout registers the checkout collectors on reg and returns them.
func NewCheckout(reg prometheus.Registerer) *Checkout {
	m := &Checkout{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Checkout attempts by terminal state.",
		}, []string{"state"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "End-to-end checkout pipeline duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Outcomes, m.Duration)
	}
	return m
}
