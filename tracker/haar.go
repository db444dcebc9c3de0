package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/rand"
)

// integralImage holds the summed area tables of a frame and of its squared
// values, with one extra row and column of zeros
type integralImage struct {
	w, h int
	sum  []float64
	sq   []float64
}

// newIntegralImage computes the summed area table of the frame
func newIntegralImage(f *cvtrack.Frame) *integralImage {

	w := f.Width + 1
	n := w * (f.Height + 1)
	ii := &integralImage{w: f.Width, h: f.Height, sum: make([]float64, n), sq: make([]float64, n)}

	for y := 1; y <= f.Height; y++ {
		row, rowSq := 0.0, 0.0

		for x := 1; x <= f.Width; x++ {
			v := float64(f.Pix[(y-1)*f.Width+x-1])
			row += v
			rowSq += v * v
			ii.sum[y*w+x] = ii.sum[(y-1)*w+x] + row
			ii.sq[y*w+x] = ii.sq[(y-1)*w+x] + rowSq
		}
	}

	return ii
}

// rectSum returns the pixel sum of the rectangle clipped to the image
func (ii *integralImage) rectSum(x0, y0, x1, y1 int) float64 {
	return ii.area(ii.sum, x0, y0, x1, y1)
}

// variance returns the pixel variance of the sample window
func (ii *integralImage) variance(b sampleBox) float64 {

	n := float64(b.w * b.h)
	m := ii.area(ii.sum, b.x, b.y, b.x+b.w, b.y+b.h) / n

	return ii.area(ii.sq, b.x, b.y, b.x+b.w, b.y+b.h)/n - m*m
}

// area sums the table over the rectangle clipped to the image
func (ii *integralImage) area(table []float64, x0, y0, x1, y1 int) float64 {

	x0 = clampInt(x0, 0, ii.w)
	x1 = clampInt(x1, 0, ii.w)
	y0 = clampInt(y0, 0, ii.h)
	y1 = clampInt(y1, 0, ii.h)

	if x1 <= x0 || y1 <= y0 {
		return 0
	}

	w := ii.w + 1

	return table[y1*w+x1] - table[y0*w+x1] - table[y1*w+x0] + table[y0*w+x0]
}

// haarRect is one weighted rectangle of a Haar feature, positioned in
// fractions of the sample box
type haarRect struct {
	x, y, w, h float64
	weight     float64
}

// haarFeature is a weighted sum of rectangle means
type haarFeature struct {
	rects []haarRect
}

// newHaarPool generates n random Haar like features of two to four
// rectangles each
func newHaarPool(n int, rng *rand.Rand) []haarFeature {

	pool := make([]haarFeature, n)

	for i := range pool {
		num := 2 + rng.Intn(3)
		rects := make([]haarRect, num)

		for j := range rects {
			x := rng.Float64() * 0.8
			y := rng.Float64() * 0.8

			rects[j] = haarRect{
				x:      x,
				y:      y,
				w:      0.1 + rng.Float64()*(0.9-x),
				h:      0.1 + rng.Float64()*(0.9-y),
				weight: rng.Float64()*2 - 1,
			}
		}

		pool[i] = haarFeature{rects: rects}
	}

	return pool
}

// eval computes the feature response on the sample box
func (hf haarFeature) eval(ii *integralImage, box sampleBox) float64 {

	v := 0.0

	for _, r := range hf.rects {
		x0 := box.x + int(r.x*float64(box.w))
		y0 := box.y + int(r.y*float64(box.h))
		x1 := x0 + max(1, int(r.w*float64(box.w)))
		y1 := y0 + max(1, int(r.h*float64(box.h)))

		v += r.weight * ii.rectSum(x0, y0, x1, y1) / float64((x1-x0)*(y1-y0))
	}

	return v
}

// sampleBox is an integer sample window
type sampleBox struct {
	x, y, w, h int
}

// toSampleBox rounds a region to a sample window
func toSampleBox(r cvtrack.Region) sampleBox {
	rect := r.Rectangle()
	return sampleBox{
		x: rect.Min.X,
		y: rect.Min.Y,
		w: max(1, rect.Dx()),
		h: max(1, rect.Dy()),
	}
}

// region converts the sample window back to a region
func (b sampleBox) region() cvtrack.Region {
	return cvtrack.R(float64(b.x), float64(b.y), float64(b.w), float64(b.h))
}

// sampleRing returns boxes of the same size as b whose offset from b lies
// within [inner, outer) pixels and that fit inside the image.  When more
// than maxNum boxes qualify a random subset is returned
func sampleRing(b sampleBox, inner, outer float64, maxNum, imgW, imgH int,
	rng *rand.Rand) []sampleBox {

	r := int(math.Ceil(outer))
	var out []sampleBox

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Hypot(float64(dx), float64(dy))

			if d < inner || d >= outer {
				continue
			}

			s := sampleBox{x: b.x + dx, y: b.y + dy, w: b.w, h: b.h}

			if s.x < 0 || s.y < 0 || s.x+s.w > imgW || s.y+s.h > imgH {
				continue
			}

			out = append(out, s)
		}
	}

	if maxNum > 0 && len(out) > maxNum {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		out = out[:maxNum]
	}

	return out
}

// gaussWeak is an online weak classifier modelling the feature response of
// positive and negative samples as Gaussians
type gaussWeak struct {
	muPos, sigPos float64
	muNeg, sigNeg float64
	// rate is the weight of the previous estimate when updating
	rate             float64
	seenPos, seenNeg bool
}

// newGaussWeak returns an untrained weak classifier
func newGaussWeak(rate float64) *gaussWeak {
	return &gaussWeak{sigPos: 1, sigNeg: 1, rate: rate}
}

// update adapts the positive and negative models to new responses.  Either
// slice may be empty
func (g *gaussWeak) update(pos, neg []float64) {

	if len(pos) > 0 {
		g.muPos, g.sigPos = g.mix(g.seenPos, g.muPos, g.sigPos, pos)
		g.seenPos = true
	}

	if len(neg) > 0 {
		g.muNeg, g.sigNeg = g.mix(g.seenNeg, g.muNeg, g.sigNeg, neg)
		g.seenNeg = true
	}
}

// mix folds a batch of responses into a running mean and deviation.  The
// deviation includes the spread of the batch mean around the old mean so a
// stream of single samples still estimates a variance
func (g *gaussWeak) mix(seen bool, mu, sig float64, vals []float64) (float64, float64) {

	m, s := meanStd(vals)

	if !seen {
		return m, math.Max(s, 1)
	}

	d := m - mu
	v := g.rate*sig*sig + (1-g.rate)*(s*s+d*d)

	return g.rate*mu + (1-g.rate)*m, math.Sqrt(v)
}

// classify returns the log likelihood ratio of v being positive
func (g *gaussWeak) classify(v float64) float64 {

	sp := math.Max(g.sigPos, 1e-3)
	sn := math.Max(g.sigNeg, 1e-3)

	lp := -math.Log(sp) - (v-g.muPos)*(v-g.muPos)/(2*sp*sp)
	ln := -math.Log(sn) - (v-g.muNeg)*(v-g.muNeg)/(2*sn*sn)

	return lp - ln
}

// meanStd returns the mean and standard deviation of the values
func meanStd(v []float64) (float64, float64) {

	sum, sq := 0.0, 0.0

	for _, x := range v {
		sum += x
		sq += x * x
	}

	n := float64(len(v))
	m := sum / n

	return m, math.Sqrt(math.Max(sq/n-m*m, 0))
}

// featureMatrix evaluates every feature on every box, indexed [feature][box]
func featureMatrix(pool []haarFeature, ii *integralImage, boxes []sampleBox) [][]float64 {

	out := make([][]float64, len(pool))

	for f, hf := range pool {
		row := make([]float64, len(boxes))

		for i, b := range boxes {
			row[i] = hf.eval(ii, b)
		}

		out[f] = row
	}

	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
