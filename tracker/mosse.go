package tracker

import (
	"github.com/swdee/go-cvtrack"
	"math"
	"math/cmplx"
	"math/rand"
)

const (
	// mosseLearningRate is the running average rate of the filter terms
	mosseLearningRate = 0.125
	// mosseSigma is the standard deviation of the desired Gaussian output
	mosseSigma = 2.0
	// mossePSRThreshold is the peak to sidelobe ratio below which the
	// target is considered lost
	mossePSRThreshold = 5.7
	// mosseWarps is the number of perturbed samples trained on at init
	mosseWarps = 8
	// mosseMaxPatch caps the patch side length, larger targets are sampled
	// at reduced resolution
	mosseMaxPatch = 64
)

// mosse implements the Minimum Output Sum of Squared Error correlation
// filter tracker
type mosse struct {
	fft *fft2
	win *plane
	// g is the spectrum of the desired Gaussian response
	g []complex128
	// a and b are the numerator and denominator of the filter
	a, b []complex128
	// pw, ph is the patch size in pixels
	pw, ph int
	// cx, cy is the target center and bw, bh its size in the frame
	cx, cy float64
	bw, bh float64
	score  float64
	rng    *rand.Rand
}

// newMOSSE returns a MOSSE engine
func newMOSSE(seed int64) *mosse {
	return &mosse{rng: rand.New(rand.NewSource(seed))}
}

// Init trains the filter on the target and a set of small rotations and
// scalings of it
func (m *mosse) Init(frame *cvtrack.Frame, region cvtrack.Region) (bool, error) {

	if !inside(frame, region) {
		return false, nil
	}

	m.cx, m.cy = region.Center()
	m.bw, m.bh = region.Width, region.Height

	scale := math.Min(1, mosseMaxPatch/math.Max(m.bw, m.bh))
	m.pw = evenSize(m.bw*scale, 8)
	m.ph = evenSize(m.bh*scale, 8)

	m.fft = newFFT2(m.pw, m.ph)
	m.win = hannWindow(m.pw, m.ph)
	m.g = m.fft.forward(gaussianLabel(m.pw, m.ph, mosseSigma))
	m.a = make([]complex128, m.pw*m.ph)
	m.b = make([]complex128, m.pw*m.ph)

	src := framePlane(frame)

	for k := 0; k < mosseWarps; k++ {
		wp := warp{cx: m.cx, cy: m.cy, srcW: m.bw, srcH: m.bh, scale: 1}

		if k > 0 {
			wp.angle = (m.rng.Float64() - 0.5) * 0.2
			wp.scale = 1 + (m.rng.Float64()-0.5)*0.1
		}

		f := m.fft.forward(m.preprocess(samplePatch(src, wp, m.pw, m.ph)))

		for i := range f {
			m.a[i] += m.g[i] * cmplx.Conj(f[i])
			m.b[i] += f[i] * cmplx.Conj(f[i])
		}
	}

	m.score = math.MaxFloat64

	return true, nil
}

// Update correlates the filter with the patch at the previous location,
// moves to the response peak and adapts the filter
func (m *mosse) Update(frame *cvtrack.Frame) (cvtrack.Region, bool, error) {

	src := framePlane(frame)
	z := m.fft.forward(m.preprocess(m.sample(src)))

	reg := 1e-5 + 1e-4*meanReal(m.b)
	rf := make([]complex128, len(z))

	for i := range z {
		rf[i] = z[i] * m.a[i] / (m.b[i] + complex(reg, 0))
	}

	resp := m.fft.inverse(rf)
	px, py, pv := peak(resp)
	m.score = peakToSidelobe(resp, px, py, pv, psrRadius(m.pw, m.ph))

	if m.score < mossePSRThreshold {
		return cvtrack.Region{}, false, nil
	}

	// convert the peak offset from patch to frame pixels
	m.cx += float64(px-m.pw/2) * m.bw / float64(m.pw)
	m.cy += float64(py-m.ph/2) * m.bh / float64(m.ph)

	// adapt the filter to the new appearance
	f := m.fft.forward(m.preprocess(m.sample(src)))

	for i := range f {
		m.a[i] = mosseLearningRate*m.g[i]*cmplx.Conj(f[i]) + (1-mosseLearningRate)*m.a[i]
		m.b[i] = mosseLearningRate*f[i]*cmplx.Conj(f[i]) + (1-mosseLearningRate)*m.b[i]
	}

	return cvtrack.RegionFromCenter(m.cx, m.cy, m.bw, m.bh), true, nil
}

// Score returns the peak to sidelobe ratio of the last update
func (m *mosse) Score() float64 {
	return m.score
}

// Close releases nothing as the engine holds only Go memory
func (m *mosse) Close() error {
	return nil
}

// sample extracts the patch at the current target location
func (m *mosse) sample(src *plane) *plane {
	return samplePatch(src, warp{cx: m.cx, cy: m.cy, srcW: m.bw, srcH: m.bh, scale: 1},
		m.pw, m.ph)
}

// preprocess applies log scaling, normalization and the cosine window to a
// patch in place
func (m *mosse) preprocess(p *plane) *plane {

	for i, v := range p.data {
		p.data[i] = math.Log(v + 1)
	}

	p.normalize()
	applyWindow(p, m.win)

	return p
}

// meanReal returns the average real component of a spectrum
func meanReal(s []complex128) float64 {

	sum := 0.0

	for _, c := range s {
		sum += real(c)
	}

	return sum / float64(len(s))
}
