package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/rand"
	"sort"
)

const (
	// tldPatchSize is the side of the normalized patches compared by the
	// nearest neighbour classifier
	tldPatchSize = 15
	// tldThetaNN is the relative similarity above which a window is
	// classified as the target
	tldThetaNN = 0.65
	// tldThetaLearn is the relative similarity of the tracked patch above
	// which the model is updated
	tldThetaLearn = 0.55
	// tldMaxExamples caps each example set
	tldMaxExamples = 100
	// tldInitNegatives is the number of negative examples taken at init
	tldInitNegatives = 50
)

// tldScales are the window scales scanned by the detector
var tldScales = []float64{0.83, 1, 1.2}

// tld implements the Tracking, Learning and Detection tracker.  A Median
// Flow tracker follows the target frame to frame, a sliding window detector
// backed by a nearest neighbour model of target and background patches
// re-finds it after loss, and the model learns from the tracked trajectory
type tld struct {
	rng  *rand.Rand
	flow *medianFlow
	// pos and neg are the normalized example patches
	pos, neg [][]float64
	// minVariance is the variance filter threshold
	minVariance float64
	box         cvtrack.Region
	valid       bool
	score       float64
}

// newTLD returns a TLD engine
func newTLD(seed int64) *tld {
	return &tld{
		rng:  rand.New(rand.NewSource(seed)),
		flow: newMedianFlow(cvtrack.DefaultMedianFlowParams()),
	}
}

// Init learns the initial target model and negatives from the surrounding
// background
func (t *tld) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	if ok, err := t.flow.Init(frame, region); !ok || err != nil {
		return ok, err
	}

	src := framePlane(frame)
	ii := newIntegralImage(frame)

	t.pos = nil
	t.neg = nil
	t.box = region
	t.valid = true

	t.minVariance = ii.variance(toSampleBox(region)) / 2

	// the target plus small warps of it
	t.pos = append(t.pos, tldPatch(src, region, 0, 1))

	for k := 0; k < 10; k++ {
		angle := (t.rng.Float64() - 0.5) * 0.2
		scale := 1 + (t.rng.Float64()-0.5)*0.1
		t.pos = append(t.pos, tldPatch(src, region, angle, scale))
	}

	// background windows not overlapping the target
	var negs []cvtrack.Region

	for _, w := range t.windows(frame, region) {
		if w.IoU(region) < 0.2 && ii.variance(toSampleBox(w)) >= t.minVariance {
			negs = append(negs, w)
		}
	}

	t.rng.Shuffle(len(negs), func(i, j int) { negs[i], negs[j] = negs[j], negs[i] })

	for i := 0; i < len(negs) && i < tldInitNegatives; i++ {
		t.neg = append(t.neg, tldPatch(src, negs[i], 0, 1))
	}

	t.score = 1

	return true, nil
}

// Update fuses the short term tracker with the detector.  The target is
// lost when neither produces a confident result
func (t *tld) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	src := framePlane(frame)
	ii := newIntegralImage(frame)

	// short term tracking, only possible while the last box is valid
	var (
		tracked     cvtrack.Region
		trackedOK   bool
		trackedConf float64
	)

	next := t.flow.pyramid(frame)

	if t.valid {
		box, fb, ok := t.flow.track(t.flow.prev, next, t.box)
		t.flow.fbError = fb

		if ok && inside(frame, box) {
			tracked = box
			trackedConf = t.similarity(tldPatch(src, box, 0, 1))
			trackedOK = trackedConf > 0.5
		}
	}

	t.flow.prev = next

	// detection over the whole frame
	dets, confs := t.detect(frame, src, ii)

	bestDet := -1

	for i := range dets {
		if bestDet < 0 || confs[i] > confs[bestDet] {
			bestDet = i
		}
	}

	switch {
	case trackedOK:
		t.box = tracked
		t.score = trackedConf

		// a clearly better detection away from the track re-initializes it
		if bestDet >= 0 && confs[bestDet] > trackedConf+0.1 &&
			dets[bestDet].IoU(tracked) < 0.5 {
			t.box = dets[bestDet]
			t.score = confs[bestDet]
		}

	case bestDet >= 0:
		t.box = dets[bestDet]
		t.score = confs[bestDet]

	default:
		t.valid = false
		t.score = 0
		return cvtrack.Region{}, false, nil
	}

	t.valid = true

	// learn from confident tracking only
	if trackedOK && t.box == tracked && trackedConf > tldThetaLearn {
		t.learn(frame, src, ii)
	}

	return t.box, true, nil
}

// Score returns the relative similarity of the reported region
func (t *tld) Score() float64 {
	return t.score
}

// Close releases nothing as the engine holds only Go memory
func (t *tld) Close() error {
	return nil
}

// windows returns the scanning grid of the detector at the model scales
func (t *tld) windows(frame *cvtrack.Frame, ref cvtrack.Region) []cvtrack.Region {

	var out []cvtrack.Region

	for _, s := range tldScales {
		w := ref.Width * s
		h := ref.Height * s

		if w < 8 || h < 8 || w > float64(frame.Width) || h > float64(frame.Height) {
			continue
		}

		stepX := math.Max(2, math.Round(w*0.1))
		stepY := math.Max(2, math.Round(h*0.1))

		for y := 0.0; y+h <= float64(frame.Height); y += stepY {
			for x := 0.0; x+w <= float64(frame.Width); x += stepX {
				out = append(out, cvtrack.R(x, y, w, h))
			}
		}
	}

	return out
}

// detect returns the windows classified as the target with their relative
// similarities
func (t *tld) detect(frame *cvtrack.Frame, src *plane, ii *integralImage) ([]cvtrack.Region, []float64) {

	var (
		dets  []cvtrack.Region
		confs []float64
	)

	for _, w := range t.windows(frame, t.box) {
		if ii.variance(toSampleBox(w)) < t.minVariance {
			continue
		}

		if c := t.similarity(tldPatch(src, w, 0, 1)); c > tldThetaNN {
			dets = append(dets, w)
			confs = append(confs, c)
		}
	}

	return dets, confs
}

// learn adds the current patch as a positive example when the model does
// not already describe it well, and confident detections away from the
// target as negatives
func (t *tld) learn(frame *cvtrack.Frame, src *plane, ii *integralImage) {

	p := tldPatch(src, t.box, 0, 1)

	if t.similarity(p) < tldThetaNN+0.1 {
		t.pos = appendExample(t.pos, p)
	}

	type scored struct {
		patch []float64
		conf  float64
	}

	var hard []scored

	for _, w := range t.windows(frame, t.box) {
		if w.IoU(t.box) >= 0.2 || ii.variance(toSampleBox(w)) < t.minVariance {
			continue
		}

		np := tldPatch(src, w, 0, 1)

		if c := t.similarity(np); c > 0.5 {
			hard = append(hard, scored{np, c})
		}
	}

	sort.Slice(hard, func(i, j int) bool { return hard[i].conf > hard[j].conf })

	for i := 0; i < len(hard) && i < 10; i++ {
		t.neg = appendExample(t.neg, hard[i].patch)
	}
}

// similarity returns the relative similarity of a patch to the positive
// versus the negative examples within [0,1]
func (t *tld) similarity(p []float64) float64 {

	sp := maxNCC(p, t.pos)
	sn := maxNCC(p, t.neg)

	if sp+sn == 0 {
		return 0
	}

	return sp / (sp + sn)
}

// tldPatch samples the region as a zero mean tldPatchSize square patch
func tldPatch(src *plane, r cvtrack.Region, angle, scale float64) []float64 {

	cx, cy := r.Center()
	p := samplePatch(src, warp{cx: cx, cy: cy, srcW: r.Width, srcH: r.Height,
		angle: angle, scale: scale}, tldPatchSize, tldPatchSize)

	m := p.mean()

	for i := range p.data {
		p.data[i] -= m
	}

	return p.data
}

// maxNCC returns the best correlation of the patch against the examples
// mapped to [0,1]
func maxNCC(p []float64, examples [][]float64) float64 {

	best := 0.0

	for _, e := range examples {
		if s := (patchNCC(p, e) + 1) / 2; s > best {
			best = s
		}
	}

	return best
}

// patchNCC is the normalized cross correlation of two zero mean patches
func patchNCC(a, b []float64) float64 {

	var ab, aa, bb float64

	for i := range a {
		ab += a[i] * b[i]
		aa += a[i] * a[i]
		bb += b[i] * b[i]
	}

	if aa == 0 || bb == 0 {
		return 0
	}

	return ab / math.Sqrt(aa*bb)
}

// appendExample adds a patch to an example set dropping the oldest
// non-initial example once full
func appendExample(set [][]float64, p []float64) [][]float64 {

	if len(set) >= tldMaxExamples {
		set = append(set[:1], set[2:]...)
	}

	return append(set, p)
}
