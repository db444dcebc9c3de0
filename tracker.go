package cvtrack

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a Tracker
type State int

const (
	// Uninitialized trackers need Init before they can Update
	Uninitialized State = iota
	// Tracking trackers have been seeded and can Update
	Tracking
)

// String returns a readable name of the state
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Tracking:
		return "tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Tracker or MultiTracker
type Option func(*options)

type options struct {
	observer Observer
	workers  int
}

// WithObserver attaches an Observer that is notified of every Init and
// Update outcome
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithWorkers sets the number of trackers a MultiTracker updates in
// parallel.  Values below 2 update sequentially
func WithWorkers(n int) Option {
	return func(opts *options) {
		opts.workers = n
	}
}

func buildOptions(opts []Option) options {
	o := options{observer: nopObserver{}, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Model is an introspection snapshot of a tracker's lifecycle.  It does not
// expose the internal representation of the backend's algorithm
type Model struct {
	// Variant of the tracker
	Variant Variant
	// Backend name and library version the tracker runs on
	Backend string
	Version Version
	// Params the tracker was constructed with, nil for variants without
	// a parameter schema
	Params Params
	// State is the current lifecycle state
	State State
	// Region is the last known target location, nil before Init or after
	// the target was lost
	Region *Region
	// Inits is the number of successful Init calls
	Inits int
	// Updates is the number of Update calls since the last Init
	Updates int
	// Lost is the number of Updates since the last Init that lost the target
	Lost int
	// Score is the engine's confidence of its last result when HasScore is
	// set
	Score    float64
	HasScore bool
}

// Tracker follows a single object across successive frames.  A Tracker is
// not safe for concurrent use
type Tracker struct {
	// backend creates the algorithm engine
	backend Backend
	// variant of the tracking algorithm
	variant Variant
	// params given at construction, nil for variants without a schema
	params Params
	// engine running the algorithm, nil once cleared until the next Init
	engine Engine
	// state of the tracker lifecycle
	state State
	// last known region of the target
	last *Region
	// counters reported by Model()
	inits   int
	updates int
	lost    int
	// observer notified of operation outcomes
	observer Observer
	closed   bool
}

// New creates an Uninitialized tracker of the variant on the backend.  Params
// may be nil to use the variant's defaults.  Passing params to a variant
// without a parameter schema returns ErrUnsupportedParameterization and
// variants not available in the backend's library version return
// ErrUnavailable
func New(b Backend, v Variant, params Params, opts ...Option) (*Tracker, error) {

	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidArgument)
	}

	if !v.valid() {
		return nil, fmt.Errorf("%w: unknown tracker variant %d", ErrInvalidArgument, int(v))
	}

	params, err := resolveParams(v, params)

	if err != nil {
		return nil, fmt.Errorf("error constructing %s tracker: %w", v, err)
	}

	if !Available(v, b.Version()) {
		return nil, fmt.Errorf("%w: %s tracker on %s %s: %s", ErrUnavailable, v,
			b.Name(), b.Version(), exclusionReason(v, OpConstruct, b.Version()))
	}

	if !binds(b, v) {
		return nil, fmt.Errorf("%w: %s tracker is not provided by the %s backend",
			ErrUnavailable, v, b.Name())
	}

	o := buildOptions(opts)

	t := &Tracker{
		backend:  b,
		variant:  v,
		params:   params,
		state:    Uninitialized,
		observer: o.observer,
	}

	t.engine, err = b.NewEngine(v, params)

	if err != nil {
		return nil, fmt.Errorf("error constructing %s tracker: %w", v, err)
	}

	return t, nil
}

// Variant returns the tracker's algorithm variant
func (t *Tracker) Variant() Variant {
	return t.variant
}

// State returns the lifecycle state
func (t *Tracker) State() State {
	return t.state
}

// Init seeds the tracker with the target region on the frame.  It returns
// the algorithm's success flag, a false result leaves the tracker
// Uninitialized.  A missing or malformed frame or region returns
// ErrInvalidArgument
func (t *Tracker) Init(frame *Frame, region Region) (bool, error) {

	if err := frame.Validate(); err != nil {
		return false, t.fail(OpInit, err)
	}

	if err := region.Validate(); err != nil {
		return false, t.fail(OpInit, err)
	}

	if t.closed {
		return false, t.fail(OpInit, ErrClosed)
	}

	if t.state == Tracking {
		return false, t.fail(OpInit, ErrAlreadyInitialized)
	}

	if !Supported(t.variant, OpInit, t.backend.Version()) {
		return false, t.fail(OpInit, fmt.Errorf("%w: %s",
			ErrUnavailable, exclusionReason(t.variant, OpInit, t.backend.Version())))
	}

	if t.engine == nil {
		engine, err := t.backend.NewEngine(t.variant, t.params)

		if err != nil {
			return false, t.fail(OpInit, err)
		}

		t.engine = engine
	}

	start := time.Now()
	ok, err := t.engine.Init(frame, region)

	if err != nil {
		t.discardEngine()
		return false, t.fail(OpInit, err)
	}

	t.observer.ObserveInit(t.variant, ok, time.Since(start))

	if !ok {
		// the engine may hold a partial model, start afresh on next Init
		t.discardEngine()
		return false, nil
	}

	seed := region
	t.last = &seed
	t.state = Tracking
	t.inits++
	t.updates = 0
	t.lost = 0

	return true, nil
}

// Update locates the target in the frame.  It returns the new region or nil
// when the target was lost, which is not an error.  Update before a
// successful Init returns ErrNotInitialized
func (t *Tracker) Update(frame *Frame) (*Region, error) {

	if err := frame.Validate(); err != nil {
		return nil, t.fail(OpUpdate, err)
	}

	if t.closed {
		return nil, t.fail(OpUpdate, ErrClosed)
	}

	if t.state != Tracking {
		return nil, t.fail(OpUpdate, ErrNotInitialized)
	}

	if !Supported(t.variant, OpUpdate, t.backend.Version()) {
		return nil, t.fail(OpUpdate, fmt.Errorf("%w: %s",
			ErrUnavailable, exclusionReason(t.variant, OpUpdate, t.backend.Version())))
	}

	start := time.Now()
	region, found, err := t.engine.Update(frame)

	if err != nil {
		return nil, t.fail(OpUpdate, err)
	}

	// guard against engines reporting malformed regions
	if found && (!region.Finite() || region.Width < 0 || region.Height < 0) {
		found = false
	}

	t.observer.ObserveUpdate(t.variant, found, time.Since(start))
	t.updates++

	if !found {
		t.lost++
		t.last = nil
		return nil, nil
	}

	t.last = &region
	out := region

	return &out, nil
}

// Clear resets the tracker to Uninitialized, discarding the algorithm's
// model so it can be seeded again with Init.  Clearing an Uninitialized
// tracker does nothing
func (t *Tracker) Clear() {

	if t.state == Uninitialized {
		return
	}

	t.discardEngine()
	t.state = Uninitialized
	t.last = nil
	t.updates = 0
	t.lost = 0
}

// Model returns an introspection snapshot of the tracker
func (t *Tracker) Model() Model {

	m := Model{
		Variant: t.variant,
		Backend: t.backend.Name(),
		Version: t.backend.Version(),
		Params:  t.params,
		State:   t.state,
		Inits:   t.inits,
		Updates: t.updates,
		Lost:    t.lost,
	}

	if t.last != nil {
		r := *t.last
		m.Region = &r
	}

	if s, ok := t.engine.(Scorer); ok && t.state == Tracking {
		m.Score = s.Score()
		m.HasScore = true
	}

	return m
}

// Close releases the resources held by the tracker.  Closing more than once
// is safe
func (t *Tracker) Close() error {

	if t.closed {
		return nil
	}

	t.closed = true
	t.state = Uninitialized
	t.last = nil

	if t.engine == nil {
		return nil
	}

	err := t.engine.Close()
	t.engine = nil

	if err != nil {
		return fmt.Errorf("error closing %s tracker: %w", t.variant, err)
	}

	return nil
}

// discardEngine closes and drops the current engine
func (t *Tracker) discardEngine() {
	if t.engine != nil {
		_ = t.engine.Close()
		t.engine = nil
	}
}

// fail wraps an operation error with the tracker context and notifies the
// observer
func (t *Tracker) fail(op Operation, err error) error {

	t.observer.ObserveError(t.variant, op, err)
	return fmt.Errorf("%s tracker %s: %w", t.variant, op, err)
}
