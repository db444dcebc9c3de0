// Package metrics exports tracker operation outcomes as Prometheus metrics
package metrics

import (
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/swdee/go-cvtrack"
	"time"
)

// Observer implements cvtrack.Observer by recording counters and latency
// histograms labelled by tracker variant
type Observer struct {
	inits    *prometheus.CounterVec
	updates  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver creates the tracker metrics and registers them with reg
func NewObserver(reg prometheus.Registerer) (*Observer, error) {

	o := &Observer{
		inits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cvtrack",
			Name:      "init_total",
			Help:      "Tracker Init calls by variant and result.",
		}, []string{"variant", "result"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cvtrack",
			Name:      "update_total",
			Help:      "Tracker Update calls by variant and result.",
		}, []string{"variant", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cvtrack",
			Name:      "errors_total",
			Help:      "Tracker operations that returned an error.",
		}, []string{"variant", "operation", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cvtrack",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in the tracking algorithm per operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"variant", "operation"}),
	}

	for _, c := range []prometheus.Collector{o.inits, o.updates, o.errors, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("error registering tracker metrics: %w", err)
		}
	}

	return o, nil
}

// ObserveInit records the result and duration of an Init
func (o *Observer) ObserveInit(v cvtrack.Variant, ok bool, took time.Duration) {

	result := "ok"

	if !ok {
		result = "rejected"
	}

	o.inits.WithLabelValues(v.String(), result).Inc()
	o.duration.WithLabelValues(v.String(), cvtrack.OpInit.String()).Observe(took.Seconds())
}

// ObserveUpdate records the result and duration of an Update
func (o *Observer) ObserveUpdate(v cvtrack.Variant, found bool, took time.Duration) {

	result := "found"

	if !found {
		result = "lost"
	}

	o.updates.WithLabelValues(v.String(), result).Inc()
	o.duration.WithLabelValues(v.String(), cvtrack.OpUpdate.String()).Observe(took.Seconds())
}

// ObserveError counts a failed operation by the kind of its error
func (o *Observer) ObserveError(v cvtrack.Variant, op cvtrack.Operation, err error) {
	o.errors.WithLabelValues(v.String(), op.String(), errorKind(err)).Inc()
}

// errorKind maps an error onto a low cardinality label value
func errorKind(err error) string {
	switch {
	case errors.Is(err, cvtrack.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, cvtrack.ErrUnsupportedParameterization):
		return "unsupported_parameterization"
	case errors.Is(err, cvtrack.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, cvtrack.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, cvtrack.ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, cvtrack.ErrClosed):
		return "closed"
	default:
		return "backend"
	}
}
