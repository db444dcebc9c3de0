package tracker

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"math"
	"math/cmplx"
)

// fft2 computes two dimensional discrete Fourier transforms of w x h planes
// by transforming rows then columns.  It keeps scratch buffers so is not
// safe for concurrent use
type fft2 struct {
	w, h   int
	rows   *fourier.CmplxFFT
	cols   *fourier.CmplxFFT
	rowIn  []complex128
	rowOut []complex128
	colIn  []complex128
	colOut []complex128
}

// newFFT2 returns a transform for planes of the given size
func newFFT2(w, h int) *fft2 {
	return &fft2{
		w:      w,
		h:      h,
		rows:   fourier.NewCmplxFFT(w),
		cols:   fourier.NewCmplxFFT(h),
		rowIn:  make([]complex128, w),
		rowOut: make([]complex128, w),
		colIn:  make([]complex128, h),
		colOut: make([]complex128, h),
	}
}

// forward transforms a real plane into its spectrum
func (f *fft2) forward(p *plane) []complex128 {

	freq := make([]complex128, f.w*f.h)

	for i, v := range p.data {
		freq[i] = complex(v, 0)
	}

	f.transform(freq, false)

	return freq
}

// inverse transforms a spectrum back to the spatial domain returning the
// real part.  The result is scaled by 1/(w*h) as gonum's transforms are
// unnormalized
func (f *fft2) inverse(freq []complex128) *plane {

	buf := make([]complex128, len(freq))
	copy(buf, freq)

	f.transform(buf, true)

	out := newPlane(f.w, f.h)
	scale := 1 / float64(f.w*f.h)

	for i, c := range buf {
		out.data[i] = real(c) * scale
	}

	return out
}

// transform runs the row and column passes in place
func (f *fft2) transform(data []complex128, inverse bool) {

	for y := 0; y < f.h; y++ {
		copy(f.rowIn, data[y*f.w:(y+1)*f.w])

		if inverse {
			f.rows.Sequence(f.rowOut, f.rowIn)
		} else {
			f.rows.Coefficients(f.rowOut, f.rowIn)
		}

		copy(data[y*f.w:(y+1)*f.w], f.rowOut)
	}

	for x := 0; x < f.w; x++ {
		for y := 0; y < f.h; y++ {
			f.colIn[y] = data[y*f.w+x]
		}

		if inverse {
			f.cols.Sequence(f.colOut, f.colIn)
		} else {
			f.cols.Coefficients(f.colOut, f.colIn)
		}

		for y := 0; y < f.h; y++ {
			data[y*f.w+x] = f.colOut[y]
		}
	}
}

// hannWindow returns a w x h separable cosine window
func hannWindow(w, h int) *plane {

	win := newPlane(w, h)

	for y := 0; y < h; y++ {
		wy := hann(y, h)

		for x := 0; x < w; x++ {
			win.data[y*w+x] = wy * hann(x, w)
		}
	}

	return win
}

// hann is the i'th coefficient of an n point Hann window
func hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

// gaussianLabel returns a w x h Gaussian peaked at the plane center
// (w/2, h/2) with the given standard deviation
func gaussianLabel(w, h int, sigma float64) *plane {

	g := newPlane(w, h)
	cx := w / 2
	cy := h / 2
	s2 := 2 * sigma * sigma

	for y := 0; y < h; y++ {
		dy := float64(y - cy)

		for x := 0; x < w; x++ {
			dx := float64(x - cx)
			g.data[y*w+x] = math.Exp(-(dx*dx + dy*dy) / s2)
		}
	}

	return g
}

// applyWindow multiplies the plane by the window in place
func applyWindow(p, win *plane) {
	for i := range p.data {
		p.data[i] *= win.data[i]
	}
}

// peak finds the location and value of the maximum of the plane
func peak(p *plane) (int, int, float64) {

	best := math.Inf(-1)
	bx, by := 0, 0

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if v := p.data[y*p.w+x]; v > best {
				best = v
				bx, by = x, y
			}
		}
	}

	return bx, by, best
}

// subPixel refines a peak coordinate by fitting a parabola through its
// neighbours along one axis
func subPixel(left, center, right float64) float64 {

	div := 2*center - left - right

	if math.Abs(div) < 1e-12 {
		return 0
	}

	off := 0.5 * (right - left) / div

	// the peak can not move further than half a pixel
	return math.Max(-0.5, math.Min(0.5, off))
}

// peakToSidelobe computes the peak to sidelobe ratio of a correlation
// response, excluding a square of the given radius around the peak
func peakToSidelobe(p *plane, px, py int, pv float64, radius int) float64 {

	sum, sumSq, n := 0.0, 0.0, 0

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if abs(x-px) <= radius && abs(y-py) <= radius {
				continue
			}

			v := p.data[y*p.w+x]
			sum += v
			sumSq += v * v
			n++
		}
	}

	if n == 0 {
		return 0
	}

	mean := sum / float64(n)
	std := math.Sqrt(math.Max(sumSq/float64(n)-mean*mean, 0))

	if std < 1e-12 {
		if pv > mean {
			return math.MaxFloat64
		}
		return 0
	}

	return (pv - mean) / std
}

// psrRadius is the sidelobe exclusion radius for a response of the given size
func psrRadius(w, h int) int {

	r := min(w, h) / 5

	if r < 1 {
		r = 1
	}

	if r > 5 {
		r = 5
	}

	return r
}

// conjMul returns a * conj(b) elementwise
func conjMul(a, b []complex128) []complex128 {

	out := make([]complex128, len(a))

	for i := range a {
		out[i] = a[i] * cmplx.Conj(b[i])
	}

	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
