package cvtrack

import (
	"fmt"
	"golang.org/x/sync/errgroup"
	"sync"
)

// MultiTracker drives a collection of independent trackers with a single
// Update call.  Results are returned in the order trackers were added, the
// collection only grows
type MultiTracker struct {
	// backend used to construct added trackers
	backend Backend
	// trackers in insertion order
	trackers []*Tracker
	// opts are the tracker options and update worker count
	opts    options
	optList []Option
	mu      sync.Mutex
}

// NewMultiTracker returns an empty MultiTracker using the backend.  It returns
// ErrUnavailable if the backend's library version predates the aggregator
func NewMultiTracker(b Backend, opts ...Option) (*MultiTracker, error) {

	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidArgument)
	}

	if !MultiTrackerAvailable(b.Version()) {
		return nil, fmt.Errorf("%w: MultiTracker on %s %s requires version %s or later",
			ErrUnavailable, b.Name(), b.Version(), MultiTrackerMinVersion)
	}

	return &MultiTracker{
		backend: b,
		opts:    buildOptions(opts),
		optList: opts,
	}, nil
}

// Add constructs a tracker of the variant with default parameters, seeds it
// with the frame and region, and appends it only if Init succeeds.  It
// returns the Init success flag
func (m *MultiTracker) Add(v Variant, frame *Frame, region Region) (bool, error) {
	return m.AddWithParams(v, nil, frame, region)
}

// AddWithParams is like Add but constructs the tracker with the given
// parameters
func (m *MultiTracker) AddWithParams(v Variant, params Params, frame *Frame,
	region Region) (bool, error) {

	if err := frame.Validate(); err != nil {
		return false, fmt.Errorf("MultiTracker add %s: %w", v, err)
	}

	t, err := New(m.backend, v, params, m.optList...)

	if err != nil {
		return false, fmt.Errorf("MultiTracker add %s: %w", v, err)
	}

	ok, err := t.Init(frame, region)

	if err != nil || !ok {
		_ = t.Close()

		if err != nil {
			return false, fmt.Errorf("MultiTracker add %s: %w", v, err)
		}

		return false, nil
	}

	m.mu.Lock()
	m.trackers = append(m.trackers, t)
	m.mu.Unlock()

	return true, nil
}

// AddBoosting adds a Boosting tracker
func (m *MultiTracker) AddBoosting(frame *Frame, region Region) (bool, error) {
	return m.Add(Boosting, frame, region)
}

// AddMIL adds a MIL tracker
func (m *MultiTracker) AddMIL(frame *Frame, region Region) (bool, error) {
	return m.Add(MIL, frame, region)
}

// AddKCF adds a KCF tracker
func (m *MultiTracker) AddKCF(frame *Frame, region Region) (bool, error) {
	return m.Add(KCF, frame, region)
}

// AddMedianFlow adds a MedianFlow tracker
func (m *MultiTracker) AddMedianFlow(frame *Frame, region Region) (bool, error) {
	return m.Add(MedianFlow, frame, region)
}

// AddTLD adds a TLD tracker
func (m *MultiTracker) AddTLD(frame *Frame, region Region) (bool, error) {
	return m.Add(TLD, frame, region)
}

// AddMOSSE adds a MOSSE tracker
func (m *MultiTracker) AddMOSSE(frame *Frame, region Region) (bool, error) {
	return m.Add(MOSSE, frame, region)
}

// AddCSRT adds a CSRT tracker
func (m *MultiTracker) AddCSRT(frame *Frame, region Region) (bool, error) {
	return m.Add(CSRT, frame, region)
}

// Update runs every tracker against the frame and returns one result per
// tracker in insertion order.  A lost target yields a nil entry at its
// position, as does a tracker whose update is excluded on the library
// version, eg: TLD on 3.1.0.  An error from any tracker fails the whole call
// and the batch is not atomic: trackers already updated have consumed the
// frame and their results are discarded
func (m *MultiTracker) Update(frame *Frame) ([]*Region, error) {

	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("MultiTracker update: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]*Region, len(m.trackers))

	if m.opts.workers < 2 || len(m.trackers) < 2 {

		for i, t := range m.trackers {
			r, err := m.updateOne(t, frame)

			if err != nil {
				return nil, fmt.Errorf("MultiTracker update tracker %d: %w", i, err)
			}

			results[i] = r
		}

		return results, nil
	}

	// each worker writes only its own result slot and the frame is read-only
	g := new(errgroup.Group)
	g.SetLimit(m.opts.workers)

	for i, t := range m.trackers {
		i, t := i, t

		g.Go(func() error {
			r, err := m.updateOne(t, frame)

			if err != nil {
				return fmt.Errorf("MultiTracker update tracker %d: %w", i, err)
			}

			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// updateOne updates a single tracker, skipping those whose update operation
// is excluded on the backend's version
func (m *MultiTracker) updateOne(t *Tracker, frame *Frame) (*Region, error) {

	if !Supported(t.Variant(), OpUpdate, m.backend.Version()) {
		return nil, nil
	}

	return t.Update(frame)
}

// Len returns the number of trackers
func (m *MultiTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.trackers)
}

// Variants returns the variant of each tracker in insertion order
func (m *MultiTracker) Variants() []Variant {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Variant, len(m.trackers))

	for i, t := range m.trackers {
		out[i] = t.Variant()
	}

	return out
}

// Models returns the introspection snapshot of each tracker in insertion
// order
func (m *MultiTracker) Models() []Model {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Model, len(m.trackers))

	for i, t := range m.trackers {
		out[i] = t.Model()
	}

	return out
}

// Close releases all trackers
func (m *MultiTracker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error

	for _, t := range m.trackers {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
