package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "pulseboard/internal/errors"
)

// Metrics holds the counters and histograms of the time tracking core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions         *prometheus.CounterVec
	rateLimitRejections prometheus.Counter
	aggregationDuration *prometheus.HistogramVec
}

// New registers the core metrics against registerer
func New(registerer prometheus.Registerer) *Metrics {
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulseboard",
			Subsystem: "time_entry",
			Name:      "transitions_total",
			Help:      "Time entry state transitions by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	registerer.MustRegister(transitions)

	rateLimitRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulseboard",
		Subsystem: "rate_limit",
		Name:      "rejections_total",
		Help:      "Pause and resume actions rejected by the rate limiter.",
	})
	registerer.MustRegister(rateLimitRejections)

	aggregationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulseboard",
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Time spent building dashboard buckets.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"range"},
	)
	registerer.MustRegister(aggregationDuration)

	return &Metrics{
		transitions:         transitions,
		rateLimitRejections: rateLimitRejections,
		aggregationDuration: aggregationDuration,
	}
}

// ObserveTransition counts one engine operation. The outcome label is "ok"
// or the error kind.
func (m *Metrics) ObserveTransition(operation string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, outcomeLabel(err)).Inc()
}

// RateLimited counts one rejected pause or resume
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimitRejections.Inc()
}

// ObserveAggregation records how long one range aggregation took
func (m *Metrics) ObserveAggregation(rangeKey string, took time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDuration.WithLabelValues(rangeKey).Observe(took.Seconds())
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Type.String()
	}
	return "error"
}
