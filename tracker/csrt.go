package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/cmplx"
)

const (
	// ADMM penalty schedule of the constrained filter solver
	csrtMu0   = 5.0
	csrtBeta  = 3.0
	csrtMuMax = 20.0
	// csrtLambda is the filter regularization
	csrtLambda = 0.01
)

// csrt implements the Discriminative Correlation Filter with Channel and
// Spatial Reliability.  Each feature channel learns a filter constrained to
// the target mask and channel responses are blended by their reliability
type csrt struct {
	params cvtrack.CSRTParams
	fft    *fft2
	win    *plane
	mask   *plane
	// yf is the spectrum of the label which peaks at the origin
	yf []complex128
	// filters holds the filter spectrum per channel and weights the
	// channel reliabilities which sum to 1
	filters [][]complex128
	weights []float64
	pw, ph  int
	ww, wh  float64
	cx, cy  float64
	bw, bh  float64
	score   float64
}

// newCSRT returns a CSRT engine
func newCSRT(p cvtrack.CSRTParams) *csrt {
	return &csrt{params: p}
}

// Init sets up the patch geometry, the target mask and learns the first
// filters
func (c *csrt) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	c.cx, c.cy = region.Center()
	c.bw, c.bh = region.Width, region.Height
	c.ww = c.bw * (1 + c.params.Padding)
	c.wh = c.bh * (1 + c.params.Padding)

	scale := float64(c.params.TemplateSize) / math.Sqrt(c.ww*c.wh)
	c.pw = evenSize(c.ww*scale, 8)
	c.ph = evenSize(c.wh*scale, 8)

	c.fft = newFFT2(c.pw, c.ph)
	c.win = hannWindow(c.pw, c.ph)

	// target size in patch pixels
	tw := c.bw * float64(c.pw) / c.ww
	th := c.bh * float64(c.ph) / c.wh

	c.mask = newPlane(c.pw, c.ph)

	for y := 0; y < c.ph; y++ {
		for x := 0; x < c.pw; x++ {
			if math.Abs(float64(x)+0.5-float64(c.pw)/2) < tw/2 &&
				math.Abs(float64(y)+0.5-float64(c.ph)/2) < th/2 {
				c.mask.set(x, y, 1)
			}
		}
	}

	sigma := math.Max(1, c.params.GslSigma*math.Sqrt(tw*th)/8)
	c.yf = c.fft.forward(originLabel(c.pw, c.ph, sigma))

	feats := c.features(framePlane(frame))
	c.filters, c.weights = c.learn(feats)
	c.score = math.MaxFloat64

	return true, nil
}

// Update locates the target from the reliability weighted channel
// responses then adapts the filters and weights
func (c *csrt) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	src := framePlane(frame)
	resp := c.respond(c.features(src), c.filters, c.weights)

	px, py, pv := peak(resp)
	c.score = peakToSidelobe(resp, px, py, pv, psrRadius(c.pw, c.ph))

	if c.score < c.params.PSRThreshold {
		return cvtrack.Region{}, false, nil
	}

	// the response is cyclic with zero displacement at the origin
	dx := float64(wrapOffset(px, c.pw)) +
		subPixel(wrapAt(resp, px-1, py), pv, wrapAt(resp, px+1, py))
	dy := float64(wrapOffset(py, c.ph)) +
		subPixel(wrapAt(resp, px, py-1), pv, wrapAt(resp, px, py+1))

	c.cx += dx * c.ww / float64(c.pw)
	c.cy += dy * c.wh / float64(c.ph)

	filters, weights := c.learn(c.features(src))
	flr := complex(c.params.FilterLR, 0)

	for ch := range c.filters {
		for i := range c.filters[ch] {
			c.filters[ch][i] = (1-flr)*c.filters[ch][i] + flr*filters[ch][i]
		}

		c.weights[ch] = (1-c.params.WeightsLR)*c.weights[ch] +
			c.params.WeightsLR*weights[ch]
	}

	normalizeWeights(c.weights)

	return cvtrack.RegionFromCenter(c.cx, c.cy, c.bw, c.bh), true, nil
}

// Score returns the peak to sidelobe ratio of the last update
func (c *csrt) Score() float64 {
	return c.score
}

// Close releases nothing as the engine holds only Go memory
func (c *csrt) Close() error {
	return nil
}

// features returns the spectra of the enabled feature channels sampled at
// the current center
func (c *csrt) features(src *plane) [][]complex128 {

	p := samplePatch(src, warp{cx: c.cx, cy: c.cy, srcW: c.ww, srcH: c.wh, scale: 1},
		c.pw, c.ph)

	for i, v := range p.data {
		p.data[i] = v/255 - 0.5
	}

	var chans []*plane

	if c.params.UseGray {
		chans = append(chans, p.clone())
	}

	if c.params.UseGradient {
		gx, gy := p.gradients()
		chans = append(chans, gx, gy)
	}

	out := make([][]complex128, len(chans))

	for i, ch := range chans {
		applyWindow(ch, c.win)
		out[i] = c.fft.forward(ch)
	}

	return out
}

// learn solves the mask constrained filter of every channel and measures
// each channel's reliability as its peak response on the training features
func (c *csrt) learn(feats [][]complex128) ([][]complex128, []float64) {

	filters := make([][]complex128, len(feats))
	weights := make([]float64, len(feats))

	for ch, f := range feats {
		filters[ch] = c.admm(f)
		_, _, pv := peak(c.fft.inverse(correlate(filters[ch], f)))
		weights[ch] = math.Max(pv, 0)
	}

	normalizeWeights(weights)

	return filters, weights
}

// admm runs the alternating direction method of multipliers enforcing the
// spatial mask on one channel's filter
func (c *csrt) admm(f []complex128) []complex128 {

	n := len(f)
	sxy := make([]complex128, n)
	sxx := make([]float64, n)

	for i := range f {
		sxy[i] = f[i] * cmplx.Conj(c.yf[i])
		sxx[i] = real(f[i] * cmplx.Conj(f[i]))
	}

	hc := make([]complex128, n)
	hm := make([]complex128, n)
	l := make([]complex128, n)

	for i := range hm {
		hm[i] = sxy[i] / complex(sxx[i]+csrtLambda, 0)
	}

	mu := csrtMu0
	tmp := make([]complex128, n)

	for it := 0; it < c.params.AdmmIterations; it++ {
		cmu := complex(mu, 0)

		for i := range hc {
			hc[i] = (sxy[i] + cmu*hm[i] - l[i]) / complex(sxx[i]+mu, 0)
			tmp[i] = l[i] + cmu*hc[i]
		}

		h := c.fft.inverse(tmp)

		for i := range h.data {
			h.data[i] = c.mask.data[i] * h.data[i] / (csrtLambda + mu)
		}

		hm = c.fft.forward(h)

		for i := range l {
			l[i] += cmu * (hc[i] - hm[i])
		}

		mu = math.Min(csrtMuMax, csrtBeta*mu)
	}

	return hm
}

// respond blends the channel correlation responses by weight
func (c *csrt) respond(feats, filters [][]complex128, weights []float64) *plane {

	total := newPlane(c.pw, c.ph)

	for ch, f := range feats {
		r := c.fft.inverse(correlate(filters[ch], f))

		for i, v := range r.data {
			total.data[i] += weights[ch] * v
		}
	}

	return total
}

// correlate returns the spectrum of the correlation of filter h with z
func correlate(h, z []complex128) []complex128 {
	return conjMul(z, h)
}

// originLabel returns a Gaussian label peaked at the origin with cyclic
// wrap around
func originLabel(w, h int, sigma float64) *plane {

	g := gaussianLabel(w, h, sigma)
	out := newPlane(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.set(x, y, g.at((x+w/2)%w, (y+h/2)%h))
		}
	}

	return out
}

// wrapAt returns the value at x, y with cyclic wrap around
func wrapAt(p *plane, x, y int) float64 {
	x = ((x % p.w) + p.w) % p.w
	y = ((y % p.h) + p.h) % p.h
	return p.data[y*p.w+x]
}

// wrapOffset converts a cyclic index into a signed displacement
func wrapOffset(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}

// normalizeWeights scales the weights to sum to 1, falling back to uniform
// weights when they are all zero
func normalizeWeights(w []float64) {

	sum := 0.0

	for _, v := range w {
		sum += v
	}

	for i := range w {
		if sum > 1e-12 {
			w[i] /= sum
		} else {
			w[i] = 1 / float64(len(w))
		}
	}
}
