package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/rand"
)

// boostingWeakRate is the weight of the previous Gaussian estimate in the
// weak classifier updates
const boostingWeakRate = 0.9

// selector chooses the best weak classifier of the shared pool from its
// own importance weighted error estimates
type selector struct {
	correct []float64
	wrong   []float64
	best    int
	alpha   float64
}

// boosting implements the online AdaBoost tracker.  Weak classifiers on Haar
// features are shared by a chain of selectors which are trained one sample
// at a time with importance weighting
type boosting struct {
	params    cvtrack.BoostingParams
	rng       *rand.Rand
	pool      []haarFeature
	weak      []*gaussWeak
	selectors []*selector
	box       sampleBox
	motion    *motionFilter
	score     float64
}

// newBoosting returns a Boosting engine
func newBoosting(p cvtrack.BoostingParams, seed int64) *boosting {
	return &boosting{params: p, rng: rand.New(rand.NewSource(seed))}
}

// Init trains the classifier for ItersInit rounds on the target and its
// surroundings
func (b *boosting) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	b.box = toSampleBox(region)
	b.pool = newHaarPool(b.params.FeatureSetNumFeatures, b.rng)
	b.weak = make([]*gaussWeak, len(b.pool))

	for i := range b.weak {
		b.weak[i] = newGaussWeak(boostingWeakRate)
	}

	b.selectors = make([]*selector, b.params.NumClassifiers)

	for i := range b.selectors {
		b.selectors[i] = &selector{
			correct: make([]float64, len(b.pool)),
			wrong:   make([]float64, len(b.pool)),
		}
	}

	b.motion = newMotionFilter(1.0/20, 1.0/160)
	b.motion.initiate(b.box.region())

	ii := newIntegralImage(frame)

	for it := 0; it < max(1, b.params.ItersInit); it++ {
		b.train(ii, frame)
	}

	b.score = 1

	return true, nil
}

// Update scans the search region around the predicted location for the
// window of highest confidence then trains on it.  Boosting always reports
// the target as found
func (b *boosting) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	ii := newIntegralImage(frame)

	pred := b.motion.predict()
	cx, cy := pred.Center()

	// candidate windows over the search region stepped by the overlap
	sw := float64(b.box.w) * b.params.SamplerSearchFactor
	sh := float64(b.box.h) * b.params.SamplerSearchFactor
	step := max(1, int(math.Round((1-b.params.SamplerOverlap)*float64(min(b.box.w, b.box.h)))))

	x0 := int(math.Round(cx - sw/2))
	y0 := int(math.Round(cy - sh/2))
	x1 := int(math.Round(cx+sw/2)) - b.box.w
	y1 := int(math.Round(cy+sh/2)) - b.box.h

	best := b.box
	bestConf := math.Inf(-1)
	bestDist := math.Inf(1)

	for y := max(0, y0); y <= min(y1, frame.Height-b.box.h); y += step {
		for x := max(0, x0); x <= min(x1, frame.Width-b.box.w); x += step {
			s := sampleBox{x: x, y: y, w: b.box.w, h: b.box.h}
			conf := b.confidence(ii, s)

			// prefer the window closest to the prediction on ties
			d := math.Hypot(float64(x+s.w/2)-cx, float64(y+s.h/2)-cy)

			if conf > bestConf || (conf == bestConf && d < bestDist) {
				best, bestConf, bestDist = s, conf, d
			}
		}
	}

	b.box = best

	if total := b.alphaSum(); total > 0 && !math.IsInf(bestConf, -1) {
		b.score = bestConf / total
	}

	if err := b.motion.correct(b.box.region()); err != nil {
		b.motion.initiate(b.box.region())
	}

	b.train(ii, frame)

	return b.box.region(), true, nil
}

// Score returns the normalized confidence of the last update within [-1,1]
func (b *boosting) Score() float64 {
	return b.score
}

// Close releases nothing as the engine holds only Go memory
func (b *boosting) Close() error {
	return nil
}

// train performs one online boosting round with the current box as the
// positive sample and shifted windows around it as negatives
func (b *boosting) train(ii *integralImage, frame *cvtrack.Frame) {

	b.trainSample(ii, b.box, 1)

	dx := max(1, b.box.w/2)
	dy := max(1, b.box.h/2)

	offsets := [][2]int{{-dx, 0}, {dx, 0}, {0, -dy}, {0, dy}}
	o := offsets[b.rng.Intn(len(offsets))]
	neg := sampleBox{x: b.box.x + o[0], y: b.box.y + o[1], w: b.box.w, h: b.box.h}

	if neg.x >= 0 && neg.y >= 0 && neg.x+neg.w <= frame.Width && neg.y+neg.h <= frame.Height {
		b.trainSample(ii, neg, -1)
	}
}

// trainSample updates the weak classifiers and propagates the sample
// through the selector chain adjusting its importance
func (b *boosting) trainSample(ii *integralImage, s sampleBox, label float64) {

	vals := make([]float64, len(b.pool))
	pred := make([]float64, len(b.pool))

	for f, hf := range b.pool {
		vals[f] = hf.eval(ii, s)

		if label > 0 {
			b.weak[f].update(vals[f:f+1], nil)
		} else {
			b.weak[f].update(nil, vals[f:f+1])
		}

		pred[f] = sign(b.weak[f].classify(vals[f]))
	}

	lambda := 1.0

	for _, sel := range b.selectors {
		bestErr := math.Inf(1)

		for f := range b.pool {
			if pred[f] == label {
				sel.correct[f] += lambda
			} else {
				sel.wrong[f] += lambda
			}

			if e := sel.wrong[f] / (sel.correct[f] + sel.wrong[f]); e < bestErr {
				bestErr = e
				sel.best = f
			}
		}

		if bestErr >= 0.5 {
			sel.alpha = 0
			continue
		}

		e := math.Max(bestErr, 1e-4)
		sel.alpha = 0.5 * math.Log((1-e)/e)

		if pred[sel.best] == label {
			lambda *= 1 / (2 * (1 - e))
		} else {
			lambda *= 1 / (2 * e)
		}
	}
}

// confidence is the weighted vote of the selectors on a window
func (b *boosting) confidence(ii *integralImage, s sampleBox) float64 {

	conf := 0.0

	for _, sel := range b.selectors {
		if sel.alpha == 0 {
			continue
		}

		f := sel.best
		conf += sel.alpha * sign(b.weak[f].classify(b.pool[f].eval(ii, s)))
	}

	return conf
}

// alphaSum is the total selector weight
func (b *boosting) alphaSum() float64 {

	sum := 0.0

	for _, sel := range b.selectors {
		sum += sel.alpha
	}

	return sum
}

func sign(v float64) float64 {
	if v >= 0 {
		return 1
	}
	return -1
}
