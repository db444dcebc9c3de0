package cvtrack

import "time"

// Observer receives the outcome of tracker operations, eg: to export metrics.
// Implementations must be safe for concurrent use as MultiTracker may update
// trackers in parallel
type Observer interface {
	// ObserveInit is called after every Init with its success flag
	ObserveInit(v Variant, ok bool, took time.Duration)
	// ObserveUpdate is called after every Update, found is false when the
	// target was lost
	ObserveUpdate(v Variant, found bool, took time.Duration)
	// ObserveError is called when an operation returned an error
	ObserveError(v Variant, op Operation, err error)
}

// nopObserver discards all observations
type nopObserver struct{}

func (nopObserver) ObserveInit(Variant, bool, time.Duration)   {}
func (nopObserver) ObserveUpdate(Variant, bool, time.Duration) {}
func (nopObserver) ObserveError(Variant, Operation, error)     {}
