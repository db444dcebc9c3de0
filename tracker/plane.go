package tracker

import (
	"github.com/swdee/go-cvtrack"
	"gonum.org/v1/gonum/floats"
	"math"
)

// plane is a single channel float image stored row major
type plane struct {
	w, h int
	data []float64
}

// newPlane allocates a zeroed plane
func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, data: make([]float64, w*h)}
}

// framePlane converts a frame to a float plane with values in [0,255]
func framePlane(f *cvtrack.Frame) *plane {

	p := newPlane(f.Width, f.Height)

	for i := range p.data {
		p.data[i] = float64(f.Pix[i])
	}

	return p
}

// at returns the value at x, y with coordinates clamped to the border
func (p *plane) at(x, y int) float64 {

	if x < 0 {
		x = 0
	} else if x >= p.w {
		x = p.w - 1
	}

	if y < 0 {
		y = 0
	} else if y >= p.h {
		y = p.h - 1
	}

	return p.data[y*p.w+x]
}

// set stores v at x, y
func (p *plane) set(x, y int, v float64) {
	p.data[y*p.w+x] = v
}

// bilinear interpolates the value at the sub pixel position x, y given in
// pixel index coordinates
func (p *plane) bilinear(x, y float64) float64 {

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	ix := int(x0)
	iy := int(y0)

	top := p.at(ix, iy)*(1-fx) + p.at(ix+1, iy)*fx
	bottom := p.at(ix, iy+1)*(1-fx) + p.at(ix+1, iy+1)*fx

	return top*(1-fy) + bottom*fy
}

// clone returns a deep copy of the plane
func (p *plane) clone() *plane {
	c := newPlane(p.w, p.h)
	copy(c.data, p.data)
	return c
}

// mean returns the average value of the plane
func (p *plane) mean() float64 {
	return floats.Sum(p.data) / float64(len(p.data))
}

// normalize shifts the plane to zero mean and scales it to unit standard
// deviation.  Flat planes become all zero
func (p *plane) normalize() {

	m := p.mean()
	floats.AddConst(-m, p.data)

	std := math.Sqrt(floats.Dot(p.data, p.data) / float64(len(p.data)))

	if std < 1e-6 {
		for i := range p.data {
			p.data[i] = 0
		}
		return
	}

	floats.Scale(1/std, p.data)
}

// variance returns the variance of the plane values
func (p *plane) variance() float64 {

	m := p.mean()
	sum := 0.0

	for _, v := range p.data {
		d := v - m
		sum += d * d
	}

	return sum / float64(len(p.data))
}

// warp describes how a patch is sampled out of a source plane
type warp struct {
	// cx, cy is the patch center in source coordinates
	cx, cy float64
	// srcW, srcH is the size of the source window
	srcW, srcH float64
	// angle in radians and scale applied about the center
	angle float64
	scale float64
}

// samplePatch extracts a dstW x dstH patch covering the warped source window
// using bilinear interpolation.  Pixels outside the source replicate the
// border
func samplePatch(src *plane, wp warp, dstW, dstH int) *plane {

	if wp.scale == 0 {
		wp.scale = 1
	}

	out := newPlane(dstW, dstH)

	sx := wp.srcW / float64(dstW)
	sy := wp.srcH / float64(dstH)
	cos := math.Cos(wp.angle) * wp.scale
	sin := math.Sin(wp.angle) * wp.scale

	for j := 0; j < dstH; j++ {
		dv := (float64(j)+0.5)*sy - wp.srcH/2

		for i := 0; i < dstW; i++ {
			du := (float64(i)+0.5)*sx - wp.srcW/2

			// source position in pixel index coordinates
			x := wp.cx + cos*du - sin*dv - 0.5
			y := wp.cy + sin*du + cos*dv - 0.5

			out.data[j*dstW+i] = src.bilinear(x, y)
		}
	}

	return out
}

// downsample halves the plane in each dimension by averaging 2x2 blocks
func (p *plane) downsample() *plane {

	w := (p.w + 1) / 2
	h := (p.h + 1) / 2
	out := newPlane(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := p.at(2*x, 2*y) + p.at(2*x+1, 2*y) +
				p.at(2*x, 2*y+1) + p.at(2*x+1, 2*y+1)
			out.data[y*w+x] = sum / 4
		}
	}

	return out
}

// gradients returns the central difference derivatives of the plane along x
// and y
func (p *plane) gradients() (*plane, *plane) {

	gx := newPlane(p.w, p.h)
	gy := newPlane(p.w, p.h)

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			gx.data[y*p.w+x] = (p.at(x+1, y) - p.at(x-1, y)) / 2
			gy.data[y*p.w+x] = (p.at(x, y+1) - p.at(x, y-1)) / 2
		}
	}

	return gx, gy
}

// inside reports whether the region overlaps the frame
func inside(f *cvtrack.Frame, r cvtrack.Region) bool {
	return !f.Bounds().Intersect(r).Empty()
}

// evenSize rounds v to the nearest even integer of at least min
func evenSize(v float64, min int) int {

	n := int(math.Round(v/2)) * 2

	if n < min {
		n = min
	}

	return n
}
