// internal/dispatch/metrics.go
package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	bundleAttempts    prometheus.Counter
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

// NewMetrics registers dispatcher metrics with reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		bundleAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launcher_bundle_attempts_total",
			Help: "Total number of bundle submission attempts",
		}),
		successCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launcher_tx_success_total",
			Help: "Total number of confirmed transactions",
		}),
		failureCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launcher_tx_failure_total",
			Help: "Total number of failed transactions",
		}),
		durationHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "launcher_dispatch_duration_seconds",
			Help:    "Dispatch duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.5, 20),
		}),
	}
	reg.MustRegister(m.bundleAttempts, m.successCounter, m.failureCounter, m.durationHistogram)
	return m
}

func (m *Metrics) TrackDispatch(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}
