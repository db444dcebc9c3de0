// Package opencv provides a cvtrack Backend running the native OpenCV
// trackers exposed by gocv
package opencv

import (
	"fmt"
	"github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
	"image"
)

// Backend creates engines backed by the linked OpenCV library
type Backend struct {
	version cvtrack.Version
}

// NewBackend returns a backend reporting the version of the OpenCV library
// gocv was built against
func NewBackend() (*Backend, error) {

	v, err := cvtrack.ParseVersion(gocv.OpenCVVersion())

	if err != nil {
		return nil, fmt.Errorf("error reading OpenCV version: %w", err)
	}

	return &Backend{version: v}, nil
}

// Name returns "opencv"
func (b *Backend) Name() string {
	return "opencv"
}

// Version returns the OpenCV library version
func (b *Backend) Version() cvtrack.Version {
	return b.version
}

// Binds reports whether gocv exposes the variant's tracker
func (b *Backend) Binds(v cvtrack.Variant) bool {
	switch v {
	case cvtrack.MIL, cvtrack.KCF, cvtrack.CSRT:
		return true
	}
	return false
}

// NewEngine creates a native tracker.  Only the trackers gocv binds are
// supported and they are always constructed with OpenCV's default
// parameters
func (b *Backend) NewEngine(v cvtrack.Variant, params cvtrack.Params) (cvtrack.Engine, error) {

	if params != nil && params != cvtrack.DefaultParams(v) {
		return nil, fmt.Errorf("%w: gocv constructs %s with default parameters only",
			cvtrack.ErrUnsupportedParameterization, v)
	}

	var t gocv.Tracker

	switch v {
	case cvtrack.MIL:
		t = gocv.NewTrackerMIL()
	case cvtrack.KCF:
		t = contrib.NewTrackerKCF()
	case cvtrack.CSRT:
		t = contrib.NewTrackerCSRT()
	default:
		return nil, fmt.Errorf("%w: %s is not bound by gocv", cvtrack.ErrUnavailable, v)
	}

	return &engine{tracker: t, mat: gocv.NewMat()}, nil
}

// engine adapts a gocv.Tracker to cvtrack.Engine
type engine struct {
	tracker gocv.Tracker
	// mat is the BGR image reused across frames
	mat gocv.Mat
}

func (e *engine) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if err := toBGR(frame, &e.mat); err != nil {
		return false, err
	}

	rect := region.Rectangle().Intersect(image.Rect(0, 0, frame.Width, frame.Height))

	if rect.Empty() {
		return false, nil
	}

	return e.tracker.Init(e.mat, rect), nil
}

func (e *engine) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	if err := toBGR(frame, &e.mat); err != nil {
		return cvtrack.Region{}, false, err
	}

	rect, ok := e.tracker.Update(e.mat)

	if !ok {
		return cvtrack.Region{}, false, nil
	}

	return cvtrack.RegionFromRectangle(rect), true, nil
}

func (e *engine) Close() error {
	e.mat.Close()
	return e.tracker.Close()
}
