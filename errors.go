package cvtrack

import "errors"

// Errors returned by trackers, backends and the capability gate.  They are
// wrapped with context, so test for them with errors.Is()
var (
	// ErrInvalidArgument is returned when a required argument such as the
	// frame or region is missing or malformed
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedParameterization is returned when construction parameters
	// are given to a variant that has no parameter schema, or the parameters
	// belong to another variant
	ErrUnsupportedParameterization = errors.New("unsupported parameterization")
	// ErrUnavailable is returned when a variant or operation is not available
	// in the backend's library version
	ErrUnavailable = errors.New("unavailable in library version")
	// ErrNotInitialized is returned when Update is called before a
	// successful Init
	ErrNotInitialized = errors.New("tracker not initialized")
	// ErrAlreadyInitialized is returned when Init is called on a tracker
	// that is already tracking.  Call Clear first to re-seed it
	ErrAlreadyInitialized = errors.New("tracker already initialized")
	// ErrClosed is returned when using a tracker after Close
	ErrClosed = errors.New("tracker closed")
)
