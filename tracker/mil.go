package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/rand"
)

// milWeakRate is the weight of the previous Gaussian estimate in the weak
// classifier updates
const milWeakRate = 0.85

// mil implements the Multiple Instance Learning tracker.  Positive samples
// near the target form a bag of which only one instance needs to be correct
// and the strong classifier is greedily selected to maximize the bag
// likelihood
type mil struct {
	params   cvtrack.MILParams
	rng      *rand.Rand
	pool     []haarFeature
	weak     []*gaussWeak
	selected []int
	box      sampleBox
	motion   *motionFilter
	score    float64
}

// newMIL returns a MIL engine
func newMIL(p cvtrack.MILParams, seed int64) *mil {
	return &mil{params: p, rng: rand.New(rand.NewSource(seed))}
}

// Init trains the classifier on samples around the target
func (m *mil) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	m.box = toSampleBox(region)
	m.pool = newHaarPool(m.params.FeatureSetNumFeatures, m.rng)
	m.weak = make([]*gaussWeak, len(m.pool))

	for i := range m.weak {
		m.weak[i] = newGaussWeak(milWeakRate)
	}

	m.motion = newMotionFilter(1.0/20, 1.0/160)
	m.motion.initiate(m.box.region())

	ii := newIntegralImage(frame)

	pos := sampleRing(m.box, 0, m.params.SamplerInitInRadius, 0,
		frame.Width, frame.Height, m.rng)
	neg := sampleRing(m.box, m.params.SamplerInitInRadius+m.params.SamplerSearchWinSize/2,
		1.5*m.params.SamplerSearchWinSize,
		m.params.SamplerInitMaxNegNum, frame.Width, frame.Height, m.rng)

	m.train(ii, m.withTarget(pos), neg)
	m.score = 1

	return true, nil
}

// Update searches the neighbourhood of the predicted location for the
// sample with the highest classifier response then retrains.  MIL always
// reports the target as found
func (m *mil) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	ii := newIntegralImage(frame)

	center := toSampleBox(m.motion.predict())
	center.w, center.h = m.box.w, m.box.h

	cands := sampleRing(center, 0, m.params.SamplerSearchWinSize, 0,
		frame.Width, frame.Height, m.rng)

	if len(cands) == 0 {
		cands = []sampleBox{m.box}
	}

	best := 0
	bestScore := math.Inf(-1)
	scores := m.strong(ii, cands)

	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}

	m.box = cands[best]
	m.score = sigmoid(bestScore)

	if err := m.motion.correct(m.box.region()); err != nil {
		m.motion.initiate(m.box.region())
	}

	pos := sampleRing(m.box, 0, m.params.SamplerTrackInRadius, m.params.SamplerTrackMaxPosNum,
		frame.Width, frame.Height, m.rng)
	neg := sampleRing(m.box, m.params.SamplerTrackInRadius+5, 1.5*m.params.SamplerSearchWinSize,
		m.params.SamplerTrackMaxNegNum, frame.Width, frame.Height, m.rng)

	m.train(ii, m.withTarget(pos), neg)

	return m.box.region(), true, nil
}

// Score returns the classifier confidence of the last update
func (m *mil) Score() float64 {
	return m.score
}

// Close releases nothing as the engine holds only Go memory
func (m *mil) Close() error {
	return nil
}

// withTarget makes sure the current box is part of the positive bag, as a
// target touching the image border produces no in-image ring samples
func (m *mil) withTarget(pos []sampleBox) []sampleBox {

	for _, p := range pos {
		if p == m.box {
			return pos
		}
	}

	return append(pos, m.box)
}

// strong evaluates the selected classifier on each box
func (m *mil) strong(ii *integralImage, boxes []sampleBox) []float64 {

	out := make([]float64, len(boxes))

	for _, f := range m.selected {
		for i, b := range boxes {
			out[i] += m.weak[f].classify(m.pool[f].eval(ii, b))
		}
	}

	return out
}

// train updates every weak classifier then greedily selects the subset
// maximizing the bag log likelihood
func (m *mil) train(ii *integralImage, pos, neg []sampleBox) {

	posF := featureMatrix(m.pool, ii, pos)
	negF := featureMatrix(m.pool, ii, neg)

	for f := range m.weak {
		m.weak[f].update(posF[f], negF[f])
	}

	// cached weak responses
	posH := make([][]float64, len(m.pool))
	negH := make([][]float64, len(m.pool))

	for f := range m.pool {
		posH[f] = make([]float64, len(pos))
		negH[f] = make([]float64, len(neg))

		for i, v := range posF[f] {
			posH[f][i] = m.weak[f].classify(v)
		}

		for i, v := range negF[f] {
			negH[f][i] = m.weak[f].classify(v)
		}
	}

	hPos := make([]float64, len(pos))
	hNeg := make([]float64, len(neg))
	used := make([]bool, len(m.pool))
	m.selected = m.selected[:0]

	for k := 0; k < cvtrack.MILSelectedFeatures && k < len(m.pool); k++ {
		bestF := -1
		bestLL := math.Inf(-1)

		for f := range m.pool {
			if used[f] {
				continue
			}

			// noisy-OR probability that the positive bag holds a positive
			notPos := 1.0

			for i := range pos {
				notPos *= 1 - sigmoid(hPos[i]+posH[f][i])
			}

			ll := math.Log(math.Max(1-notPos, 1e-12))

			for i := range neg {
				ll += math.Log(math.Max(1-sigmoid(hNeg[i]+negH[f][i]), 1e-12))
			}

			if ll > bestLL {
				bestF, bestLL = f, ll
			}
		}

		if bestF < 0 {
			break
		}

		used[bestF] = true
		m.selected = append(m.selected, bestF)

		for i := range pos {
			hPos[i] += posH[bestF][i]
		}

		for i := range neg {
			hNeg[i] += negH[bestF][i]
		}
	}
}
