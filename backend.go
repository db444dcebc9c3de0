package cvtrack

// Backend creates tracker engines for a particular tracking library, such as
// OpenCV via gocv or the pure Go implementations in the tracker package
type Backend interface {
	// Name is a short identifier of the backend, eg: "opencv"
	Name() string
	// Version is the runtime library version used by the capability gate
	Version() Version
	// NewEngine constructs an engine for the variant.  Params has already
	// been checked to belong to the variant and is nil only for variants
	// without a parameter schema
	NewEngine(v Variant, params Params) (Engine, error)
}

// Engine is the algorithm side of a single object tracker.  Engines are
// driven by Tracker which guarantees arguments have been validated and that
// Init is called once before any Update
type Engine interface {
	// Init seeds the engine with the target region on the frame.  Returning
	// false means the algorithm rejected the seed
	Init(frame *Frame, region Region) (bool, error)
	// Update locates the target in the next frame.  Returning false means
	// the target was lost
	Update(frame *Frame) (Region, bool, error)
	// Close releases any resources held by the engine
	Close() error
}

// Scorer is optionally implemented by engines that expose the confidence
// of their most recent Init or Update, eg: the peak to sidelobe ratio of a
// correlation filter
type Scorer interface {
	Score() float64
}

// Binder is optionally implemented by backends that provide only some of the
// variants their library version supports, eg: gocv binds just MIL, KCF and
// CSRT
type Binder interface {
	Binds(v Variant) bool
}

// binds reports whether the backend provides the variant
func binds(b Backend, v Variant) bool {
	if bd, ok := b.(Binder); ok {
		return bd.Binds(v)
	}
	return true
}

// BackendVariants returns the variants available on the backend's library
// version that the backend also provides
func BackendVariants(b Backend) []Variant {

	var out []Variant

	for _, v := range AvailableVariants(b.Version()) {
		if binds(b, v) {
			out = append(out, v)
		}
	}

	return out
}
