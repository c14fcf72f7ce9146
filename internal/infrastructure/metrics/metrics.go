package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcome labels.
const (
	OutcomeCacheHit      = "cache_hit"
	OutcomeRemoteSuccess = "remote_success"
	OutcomeRemoteError   = "remote_error"
)

// Metrics provides observability for affiliate lookups.
type Metrics struct {
	// Lookup outcomes by resolution path
	LookupOutcome *prometheus.CounterVec

	// Remote registry call latencies by operation
	RegistryLatency *prometheus.HistogramVec

	// Overall lookup latency including storage and registry time
	LookupLatency prometheus.Histogram
}

// New creates a new Metrics instance with all lookup metrics registered.
func New() *Metrics {
	return &Metrics{
		LookupOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sis_lookup_outcomes_total",
			Help: "Total affiliate lookup outcomes by resolution path",
		}, []string{"outcome"}), // outcome: "cache_hit", "remote_success", "remote_error"

		RegistryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sis_registry_call_duration_seconds",
			Help:    "Duration of remote registry calls by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}), // operation: "get_session", "query_affiliate"

		LookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sis_lookup_duration_seconds",
			Help:    "Duration of full affiliate lookups including storage and registry time",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records a lookup outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.LookupOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveRegistryLatency records the duration of one remote registry call.
func (m *Metrics) ObserveRegistryLatency(operation string, d time.Duration) {
	if m != nil {
		m.RegistryLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// ObserveLookupLatency records the total lookup duration.
func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}
