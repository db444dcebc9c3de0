package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/cmplx"
)

// kcf implements the Kernelized Correlation Filter tracker with a Gaussian
// kernel over gray scale features
type kcf struct {
	params cvtrack.KCFParams
	fft    *fft2
	win    *plane
	// yf is the spectrum of the regression target
	yf []complex128
	// alphaf is the dual coefficient spectrum and tmpl the appearance model
	alphaf []complex128
	tmpl   *plane
	// pw, ph is the patch size and ww, wh the padded window size in frame
	// pixels the patch covers
	pw, ph int
	ww, wh float64
	cx, cy float64
	bw, bh float64
	score  float64
}

// newKCF returns a KCF engine
func newKCF(p cvtrack.KCFParams) *kcf {
	return &kcf{params: p}
}

// Init builds the patch geometry and trains the first model
func (k *kcf) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	k.cx, k.cy = region.Center()
	k.bw, k.bh = region.Width, region.Height
	k.ww = k.bw * (1 + k.params.Padding)
	k.wh = k.bh * (1 + k.params.Padding)

	scale := 1.0

	if k.params.Resize && k.ww*k.wh > float64(k.params.MaxPatchSize) {
		scale = math.Sqrt(float64(k.params.MaxPatchSize) / (k.ww * k.wh))
	}

	k.pw = evenSize(k.ww*scale, 8)
	k.ph = evenSize(k.wh*scale, 8)

	k.fft = newFFT2(k.pw, k.ph)
	k.win = hannWindow(k.pw, k.ph)

	sigma := math.Max(0.5, math.Sqrt(k.bw*k.bh)*k.params.OutputSigmaFactor*scale)
	k.yf = k.fft.forward(gaussianLabel(k.pw, k.ph, sigma))

	k.tmpl = k.features(framePlane(frame))
	k.alphaf = k.train(k.tmpl)
	k.score = 1

	return true, nil
}

// Update detects the target around its previous location and interpolates
// the model towards the new appearance
func (k *kcf) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	src := framePlane(frame)
	z := k.features(src)

	kzf := k.fft.forward(k.kernel(k.tmpl, z))
	rf := make([]complex128, len(kzf))

	for i := range kzf {
		rf[i] = k.alphaf[i] * kzf[i]
	}

	resp := k.fft.inverse(rf)
	px, py, pv := peak(resp)
	k.score = pv

	if pv < k.params.DetectThresh {
		return cvtrack.Region{}, false, nil
	}

	dx := float64(px-k.pw/2) +
		subPixel(resp.at(px-1, py), pv, resp.at(px+1, py))
	dy := float64(py-k.ph/2) +
		subPixel(resp.at(px, py-1), pv, resp.at(px, py+1))

	k.cx += dx * k.ww / float64(k.pw)
	k.cy += dy * k.wh / float64(k.ph)

	// train on the new location and interpolate
	x := k.features(src)
	alphaf := k.train(x)
	rate := k.params.InterpFactor

	for i := range k.tmpl.data {
		k.tmpl.data[i] = (1-rate)*k.tmpl.data[i] + rate*x.data[i]
	}

	for i := range k.alphaf {
		k.alphaf[i] = complex(1-rate, 0)*k.alphaf[i] + complex(rate, 0)*alphaf[i]
	}

	return cvtrack.RegionFromCenter(k.cx, k.cy, k.bw, k.bh), true, nil
}

// Score returns the peak response of the last update
func (k *kcf) Score() float64 {
	return k.score
}

// Close releases nothing as the engine holds only Go memory
func (k *kcf) Close() error {
	return nil
}

// features samples the padded window at the current center scaled to
// [-0.5,0.5] and windowed
func (k *kcf) features(src *plane) *plane {

	p := samplePatch(src, warp{cx: k.cx, cy: k.cy, srcW: k.ww, srcH: k.wh, scale: 1},
		k.pw, k.ph)

	for i, v := range p.data {
		p.data[i] = v/255 - 0.5
	}

	applyWindow(p, k.win)

	return p
}

// train solves the kernel ridge regression for a patch returning the dual
// coefficients in the Fourier domain
func (k *kcf) train(x *plane) []complex128 {

	kf := k.fft.forward(k.kernel(x, x))
	alphaf := make([]complex128, len(kf))

	for i := range kf {
		alphaf[i] = k.yf[i] / (kf[i] + complex(k.params.Lambda, 0))
	}

	return alphaf
}

// kernel evaluates the Gaussian kernel between x and every cyclic shift of z
func (k *kcf) kernel(x, z *plane) *plane {

	xf := k.fft.forward(x)
	zf := k.fft.forward(z)

	xx := 0.0
	zz := 0.0

	for i := range x.data {
		xx += x.data[i] * x.data[i]
		zz += z.data[i] * z.data[i]
	}

	cross := make([]complex128, len(xf))

	for i := range xf {
		cross[i] = cmplx.Conj(xf[i]) * zf[i]
	}

	xz := k.fft.inverse(cross)
	n := float64(len(x.data))
	s2 := k.params.Sigma * k.params.Sigma

	for i, v := range xz.data {
		d := math.Max(0, xx+zz-2*v) / n
		xz.data[i] = math.Exp(-d / s2)
	}

	return xz
}
