package cvtrack

import (
	"errors"
	"sync"
	"time"
)

// fakeBackend creates scripted engines so the lifecycle can be tested
// without a tracking algorithm
type fakeBackend struct {
	version Version
	// initOK is the result every engine Init returns
	initOK bool
	// lostAfter makes engines report a lost target from that update on, 0
	// never loses the target
	lostAfter int
	// failUpdate makes engines return an error from Update
	failUpdate bool
	mu         sync.Mutex
	engines    []*fakeEngine
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{version: V(4, 9, 0), initOK: true}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Version() Version { return b.version }

func (b *fakeBackend) NewEngine(v Variant, params Params) (Engine, error) {

	b.mu.Lock()
	defer b.mu.Unlock()

	e := &fakeEngine{
		variant:    v,
		params:     params,
		initOK:     b.initOK,
		lostAfter:  b.lostAfter,
		failUpdate: b.failUpdate,
	}
	b.engines = append(b.engines, e)

	return e, nil
}

// created returns the number of engines constructed
func (b *fakeBackend) created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.engines)
}

var errFakeUpdate = errors.New("fake update failure")

// fakeEngine moves the target one pixel right on every update
type fakeEngine struct {
	variant    Variant
	params     Params
	initOK     bool
	lostAfter  int
	failUpdate bool
	region     Region
	updates    int
	closed     bool
}

func (e *fakeEngine) Init(frame *Frame, region Region) (bool, error) {
	e.region = region
	return e.initOK, nil
}

func (e *fakeEngine) Update(frame *Frame) (Region, bool, error) {

	if e.failUpdate {
		return Region{}, false, errFakeUpdate
	}

	e.updates++

	if e.lostAfter > 0 && e.updates >= e.lostAfter {
		return Region{}, false, nil
	}

	e.region = e.region.Translate(1, 0)

	return e.region, true, nil
}

func (e *fakeEngine) Score() float64 {
	return float64(e.updates)
}

func (e *fakeEngine) Close() error {
	e.closed = true
	return nil
}

// recordingObserver counts observations
type recordingObserver struct {
	mu      sync.Mutex
	inits   int
	updates int
	lost    int
	errs    []Operation
}

func (o *recordingObserver) ObserveInit(v Variant, ok bool, took time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inits++
}

func (o *recordingObserver) ObserveUpdate(v Variant, found bool, took time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates++
	if !found {
		o.lost++
	}
}

func (o *recordingObserver) ObserveError(v Variant, op Operation, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, op)
}

// testFrame returns a small frame with a gradient pattern
func testFrame() *Frame {

	pix := make([]uint8, 64*48)

	for i := range pix {
		pix[i] = uint8(i % 251)
	}

	return &Frame{Width: 64, Height: 48, Pix: pix}
}

// bindingBackend is a fake backend that provides only the listed variants
type bindingBackend struct {
	*fakeBackend
	bound []Variant
}

func (b *bindingBackend) Binds(v Variant) bool {
	for _, bv := range b.bound {
		if bv == v {
			return true
		}
	}
	return false
}
