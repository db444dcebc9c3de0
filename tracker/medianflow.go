package tracker

import (
	"github.com/swdee/go-cvtrack"
	"gonum.org/v1/gonum/stat"
	"math"
	"sort"
)

// medianFlow implements the Median Flow tracker.  A grid of points is
// tracked forward and backward with Lucas-Kanade and the box follows the
// median motion of the most reliable points
type medianFlow struct {
	params cvtrack.MedianFlowParams
	prev   pyramid
	box    cvtrack.Region
	// fbError is the median forward-backward error of the last update
	fbError float64
}

// newMedianFlow returns a Median Flow engine
func newMedianFlow(p cvtrack.MedianFlowParams) *medianFlow {
	return &medianFlow{params: p}
}

// Init stores the first frame and box
func (m *medianFlow) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	m.prev = m.pyramid(frame)
	m.box = region
	m.fbError = 0

	return true, nil
}

// Update tracks the box into the frame
func (m *medianFlow) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	next := m.pyramid(frame)
	box, fb, ok := m.track(m.prev, next, m.box)

	m.prev = next
	m.fbError = fb

	if !ok || !inside(frame, box) {
		return cvtrack.Region{}, false, nil
	}

	m.box = box

	return box, true, nil
}

// Score returns the median forward-backward error of the last update, lower
// is better
func (m *medianFlow) Score() float64 {
	return m.fbError
}

// Close releases nothing as the engine holds only Go memory
func (m *medianFlow) Close() error {
	return nil
}

// pyramid builds the image pyramid of a frame
func (m *medianFlow) pyramid(frame *cvtrack.Frame) pyramid {
	return buildPyramid(framePlane(frame), m.params.MaxLevel, 2*m.params.WinSize+1)
}

// track estimates the box in next given its location in prev.  It returns
// the median forward-backward error and false when the motion estimate is
// unreliable
func (m *medianFlow) track(prev, next pyramid, box cvtrack.Region) (cvtrack.Region, float64, bool) {

	lk := lkParams{
		half:       m.params.WinSize,
		iterations: m.params.MaxIterations,
		epsilon:    m.params.Epsilon,
	}

	// grid of points inside the box
	n := m.params.PointsInGrid
	pts := make([]point, 0, n*n)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			pts = append(pts, point{
				x: box.X + (float64(i)+0.5)*box.Width/float64(n),
				y: box.Y + (float64(j)+0.5)*box.Height/float64(n),
			})
		}
	}

	fwd, fwdOK := opticalFlow(prev, next, pts, lk)
	bwd, bwdOK := opticalFlow(next, prev, fwd, lk)

	var (
		src, dst []point
		fbErr    []float64
		corr     []float64
	)

	for i := range pts {
		if !fwdOK[i] || !bwdOK[i] {
			continue
		}

		src = append(src, pts[i])
		dst = append(dst, fwd[i])
		fbErr = append(fbErr, dist(pts[i], bwd[i]))
		corr = append(corr, ncc(prev[0], pts[i], next[0], fwd[i], m.params.WinSizeNCC))
	}

	if len(src) == 0 {
		return cvtrack.Region{}, math.Inf(1), false
	}

	medFB := median(fbErr)
	medNCC := median(corr)

	// keep points that are at least as reliable as the median on both
	// measures
	var keptSrc, keptDst []point

	for i := range src {
		if fbErr[i] <= medFB && corr[i] >= medNCC {
			keptSrc = append(keptSrc, src[i])
			keptDst = append(keptDst, dst[i])
		}
	}

	if len(keptSrc) == 0 {
		keptSrc, keptDst = src, dst
	}

	if medFB > m.params.MaxMedianLengthOfDisplacementDifference {
		return cvtrack.Region{}, medFB, false
	}

	dxs := make([]float64, len(keptSrc))
	dys := make([]float64, len(keptSrc))

	for i := range keptSrc {
		dxs[i] = keptDst[i].x - keptSrc[i].x
		dys[i] = keptDst[i].y - keptSrc[i].y
	}

	dx := median(dxs)
	dy := median(dys)
	s := scaleChange(keptSrc, keptDst)

	cx, cy := box.Center()
	out := cvtrack.RegionFromCenter(cx+dx, cy+dy, box.Width*s, box.Height*s)

	if !out.Finite() || out.Empty() {
		return cvtrack.Region{}, medFB, false
	}

	return out, medFB, true
}

// scaleChange estimates the median ratio of pairwise point distances
// between the two point sets
func scaleChange(src, dst []point) float64 {

	var ratios []float64

	for i := 0; i < len(src); i++ {
		for j := i + 1; j < len(src); j++ {
			d0 := dist(src[i], src[j])

			if d0 < 1e-6 {
				continue
			}

			ratios = append(ratios, dist(dst[i], dst[j])/d0)
		}
	}

	if len(ratios) == 0 {
		return 1
	}

	return median(ratios)
}

// median returns the median of the values, which are not modified
func median(vals []float64) float64 {

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
