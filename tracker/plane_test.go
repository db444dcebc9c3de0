package tracker

import (
	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-cvtrack"
	"math"
	"testing"
)

func TestFFTInverse(t *testing.T) {

	p := newPlane(12, 8)

	for i := range p.data {
		p.data[i] = math.Sin(float64(i)*0.7) + float64(i%5)
	}

	f := newFFT2(p.w, p.h)
	back := f.inverse(f.forward(p))

	for i := range p.data {
		assert.InDelta(t, p.data[i], back.data[i], 1e-9)
	}
}

func TestGaussianLabelPeak(t *testing.T) {

	g := gaussianLabel(16, 10, 2)
	x, y, v := peak(g)

	assert.Equal(t, 8, x)
	assert.Equal(t, 5, y)
	assert.InDelta(t, 1.0, v, 1e-12)

	o := originLabel(16, 10, 2)
	x, y, _ = peak(o)

	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestPeakToSidelobe(t *testing.T) {

	p := newPlane(20, 20)

	for i := range p.data {
		p.data[i] = float64(i%3) * 0.1
	}

	p.set(10, 10, 5)

	psr := peakToSidelobe(p, 10, 10, 5, 2)
	assert.Greater(t, psr, 20.0)

	flat := newPlane(20, 20)
	assert.Equal(t, 0.0, peakToSidelobe(flat, 0, 0, 0, 2))
}

func TestSubPixel(t *testing.T) {

	assert.InDelta(t, 0.0, subPixel(1, 2, 1), 1e-12)
	assert.Greater(t, subPixel(1, 2, 1.5), 0.0)
	assert.Less(t, subPixel(1.5, 2, 1), 0.0)
	assert.Equal(t, 0.0, subPixel(1, 1, 1))
}

func TestSamplePatchIdentity(t *testing.T) {

	src := newPlane(10, 10)

	for i := range src.data {
		src.data[i] = float64(i)
	}

	// sampling a window at native resolution reproduces the pixels
	p := samplePatch(src, warp{cx: 5, cy: 5, srcW: 4, srcH: 4, scale: 1}, 4, 4)

	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			assert.InDelta(t, src.at(3+i, 3+j), p.at(i, j), 1e-9)
		}
	}
}

func TestNormalizeFlat(t *testing.T) {

	p := newPlane(4, 4)

	for i := range p.data {
		p.data[i] = 7
	}

	p.normalize()

	for _, v := range p.data {
		assert.Equal(t, 0.0, v)
	}
}

func TestIntegralImage(t *testing.T) {

	pix := make([]uint8, 6*5)

	for i := range pix {
		pix[i] = uint8(i * 3)
	}

	f, err := cvtrack.NewFrame(6, 5, pix)
	assert.NoError(t, err)

	ii := newIntegralImage(f)

	// brute force sum of the 3x2 block at (1,2)
	want := 0.0
	var vals []float64

	for y := 2; y < 4; y++ {
		for x := 1; x < 4; x++ {
			want += float64(pix[y*6+x])
			vals = append(vals, float64(pix[y*6+x]))
		}
	}

	assert.InDelta(t, want, ii.rectSum(1, 2, 4, 4), 1e-9)

	_, std := meanStd(vals)
	assert.InDelta(t, std*std, ii.variance(sampleBox{x: 1, y: 2, w: 3, h: 2}), 1e-6)

	// clipped to the image
	assert.InDelta(t, ii.rectSum(0, 0, 6, 5), ii.rectSum(-3, -3, 10, 10), 1e-9)
}

func TestMedian(t *testing.T) {

	vals := []float64{5, 1, 3}
	assert.Equal(t, 3.0, median(vals))

	// input is left untouched
	assert.Equal(t, []float64{5, 1, 3}, vals)
}

func TestGaussWeak(t *testing.T) {

	g := newGaussWeak(0.85)
	g.update([]float64{10, 11, 9}, []float64{-10, -11, -9})

	assert.Greater(t, g.classify(10), 0.0)
	assert.Less(t, g.classify(-10), 0.0)
}
