package tracker

import (
	"math"
)

// pyramid is a stack of successively halved planes, level 0 being the full
// resolution image
type pyramid []*plane

// buildPyramid creates up to maxLevel reduced levels above the base plane,
// stopping once a level would be smaller than minSize
func buildPyramid(base *plane, maxLevel, minSize int) pyramid {

	pyr := pyramid{base}

	for l := 0; l < maxLevel; l++ {
		top := pyr[len(pyr)-1]

		if top.w/2 < minSize || top.h/2 < minSize {
			break
		}

		pyr = append(pyr, top.downsample())
	}

	return pyr
}

// lkParams configures the pyramidal Lucas-Kanade solver
type lkParams struct {
	// half is the window half size
	half       int
	iterations int
	epsilon    float64
}

// point is a sub pixel image location
type point struct {
	x, y float64
}

// opticalFlow tracks each point from prev to next with pyramidal
// Lucas-Kanade.  The returned status is false for points that could not be
// tracked
func opticalFlow(prev, next pyramid, pts []point, p lkParams) ([]point, []bool) {

	out := make([]point, len(pts))
	status := make([]bool, len(pts))
	levels := len(prev)

	if len(next) < levels {
		levels = len(next)
	}

	for i, pt := range pts {
		out[i], status[i] = trackPoint(prev, next, levels, pt, p)
	}

	return out, status
}

// trackPoint refines the displacement of a single point from the coarsest
// level down to full resolution
func trackPoint(prev, next pyramid, levels int, pt point, p lkParams) (point, bool) {

	gx, gy := 0.0, 0.0

	for l := levels - 1; l >= 0; l-- {
		scale := math.Ldexp(1, -l)
		px := pt.x * scale
		py := pt.y * scale

		src := prev[l]
		dst := next[l]

		// spatial gradient matrix of the window in the previous image
		var gxx, gxy, gyy float64

		n := (2*p.half + 1) * (2*p.half + 1)
		ix := make([]float64, 0, n)
		iy := make([]float64, 0, n)
		iv := make([]float64, 0, n)

		for wy := -p.half; wy <= p.half; wy++ {
			for wx := -p.half; wx <= p.half; wx++ {
				x := px + float64(wx)
				y := py + float64(wy)

				dx := (src.bilinear(x+1, y) - src.bilinear(x-1, y)) / 2
				dy := (src.bilinear(x, y+1) - src.bilinear(x, y-1)) / 2

				gxx += dx * dx
				gxy += dx * dy
				gyy += dy * dy

				ix = append(ix, dx)
				iy = append(iy, dy)
				iv = append(iv, src.bilinear(x, y))
			}
		}

		det := gxx*gyy - gxy*gxy

		if det < 1e-6*float64(n) {
			return point{}, false
		}

		vx, vy := 0.0, 0.0

		for it := 0; it < p.iterations; it++ {
			var bx, by float64
			k := 0

			for wy := -p.half; wy <= p.half; wy++ {
				for wx := -p.half; wx <= p.half; wx++ {
					x := px + float64(wx) + gx + vx
					y := py + float64(wy) + gy + vy

					diff := iv[k] - dst.bilinear(x, y)
					bx += diff * ix[k]
					by += diff * iy[k]
					k++
				}
			}

			ex := (gyy*bx - gxy*by) / det
			ey := (gxx*by - gxy*bx) / det

			vx += ex
			vy += ey

			if ex*ex+ey*ey < p.epsilon*p.epsilon {
				break
			}
		}

		if l > 0 {
			gx = 2 * (gx + vx)
			gy = 2 * (gy + vy)
		} else {
			gx += vx
			gy += vy
		}
	}

	res := point{x: pt.x + gx, y: pt.y + gy}
	base := next[0]

	if math.IsNaN(res.x) || math.IsNaN(res.y) ||
		res.x < 0 || res.y < 0 || res.x > float64(base.w-1) || res.y > float64(base.h-1) {
		return point{}, false
	}

	return res, true
}

// ncc computes the normalized cross correlation between size x size patches
// centered on a in plane p and b in plane q
func ncc(p *plane, a point, q *plane, b point, size int) float64 {

	half := float64(size-1) / 2
	n := float64(size * size)
	var sa, sb, saa, sbb, sab float64

	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			va := p.bilinear(a.x-half+float64(i), a.y-half+float64(j))
			vb := q.bilinear(b.x-half+float64(i), b.y-half+float64(j))

			sa += va
			sb += vb
			saa += va * va
			sbb += vb * vb
			sab += va * vb
		}
	}

	num := sab - sa*sb/n
	den := math.Sqrt((saa - sa*sa/n) * (sbb - sb*sb/n))

	if den < 1e-9 {
		// two flat patches are a perfect match
		if math.Abs(sa/n-sb/n) < 1e-9 {
			return 1
		}
		return 0
	}

	return num / den
}

func dist(a, b point) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}
