package tracker

import (
	"fmt"
	"github.com/swdee/go-cvtrack"
)

// DefaultVersion is the library version the pure Go backend reports unless
// configured otherwise
var DefaultVersion = cvtrack.V(4, 9, 0)

// Backend creates the pure Go tracker engines
type Backend struct {
	version cvtrack.Version
	seed    int64
}

// Option configures a Backend
type Option func(*Backend)

// WithVersion sets the library version reported to the capability gate, to
// reproduce the variant set of a given OpenCV release
func WithVersion(v cvtrack.Version) Option {
	return func(b *Backend) {
		b.version = v
	}
}

// WithSeed sets the random seed of the engines that sample or perturb
// training data
func WithSeed(seed int64) Option {
	return func(b *Backend) {
		b.seed = seed
	}
}

// NewBackend returns a pure Go backend
func NewBackend(opts ...Option) *Backend {

	b := &Backend{
		version: DefaultVersion,
		seed:    1,
	}

	for _, o := range opts {
		o(b)
	}

	return b
}

// Name returns "go"
func (b *Backend) Name() string {
	return "go"
}

// Version returns the emulated library version
func (b *Backend) Version() cvtrack.Version {
	return b.version
}

// NewEngine constructs the engine of the given variant
func (b *Backend) NewEngine(v cvtrack.Variant, params cvtrack.Params) (cvtrack.Engine, error) {

	switch v {
	case cvtrack.Boosting:
		p, err := paramsAs[cvtrack.BoostingParams](v, params)
		if err != nil {
			return nil, err
		}
		return newBoosting(p, b.seed), nil

	case cvtrack.MIL:
		p, err := paramsAs[cvtrack.MILParams](v, params)
		if err != nil {
			return nil, err
		}
		return newMIL(p, b.seed), nil

	case cvtrack.KCF:
		p, err := paramsAs[cvtrack.KCFParams](v, params)
		if err != nil {
			return nil, err
		}
		return newKCF(p), nil

	case cvtrack.MedianFlow:
		p, err := paramsAs[cvtrack.MedianFlowParams](v, params)
		if err != nil {
			return nil, err
		}
		return newMedianFlow(p), nil

	case cvtrack.TLD:
		return newTLD(b.seed), nil

	case cvtrack.MOSSE:
		return newMOSSE(b.seed), nil

	case cvtrack.CSRT:
		p, err := paramsAs[cvtrack.CSRTParams](v, params)
		if err != nil {
			return nil, err
		}
		return newCSRT(p), nil
	}

	return nil, fmt.Errorf("%w: unknown variant %d", cvtrack.ErrInvalidArgument, int(v))
}

// paramsAs returns the variant's concrete parameters, falling back to the
// defaults when none are given
func paramsAs[T cvtrack.Params](v cvtrack.Variant, params cvtrack.Params) (T, error) {

	if params == nil {
		params = cvtrack.DefaultParams(v)
	}

	p, ok := params.(T)

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T given to %s", cvtrack.ErrUnsupportedParameterization,
			params, v)
	}

	return p, nil
}
