package cvtrack

import (
	"fmt"
	"image"
	"math"
)

// Region is an axis aligned bounding box (x, y, width, height) describing
// the location of a tracked object in a frame.  X and Y are the top left
// corner
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Xyah (center x, center y, aspect ratio, height) representation of a region
type Xyah [4]float64

// R is a shorthand constructor for a Region
func R(x, y, width, height float64) Region {
	return Region{X: x, Y: y, Width: width, Height: height}
}

// RegionFromRectangle converts an image.Rectangle to a Region
func RegionFromRectangle(r image.Rectangle) Region {
	r = r.Canon()
	return Region{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// RegionFromXyah creates a Region from (center x, center y, aspect ratio,
// height) format
func RegionFromXyah(xyah Xyah) Region {
	width := xyah[2] * xyah[3]
	return Region{
		X:      xyah[0] - width/2,
		Y:      xyah[1] - xyah[3]/2,
		Width:  width,
		Height: xyah[3],
	}
}

// RegionFromCenter creates a Region of the given size centered on (cx, cy)
func RegionFromCenter(cx, cy, width, height float64) Region {
	return Region{X: cx - width/2, Y: cy - height/2, Width: width, Height: height}
}

// Rectangle converts the region to an image.Rectangle, rounding coordinates
// to the nearest pixel
func (r Region) Rectangle() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

// BRX returns the bottom-right x coordinate of the region
func (r Region) BRX() float64 {
	return r.X + r.Width
}

// BRY returns the bottom-right y coordinate of the region
func (r Region) BRY() float64 {
	return r.Y + r.Height
}

// Center returns the center point of the region
func (r Region) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Area returns the area of the region
func (r Region) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Xyah converts the region to (center x, center y, aspect ratio, height)
// format
func (r Region) Xyah() Xyah {
	cx, cy := r.Center()
	return Xyah{cx, cy, r.Width / r.Height, r.Height}
}

// Finite reports whether all components are finite numbers
func (r Region) Finite() bool {
	for _, f := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Empty reports whether the region has no area
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Validate checks the region is usable as a tracker seed
func (r Region) Validate() error {
	if !r.Finite() {
		return fmt.Errorf("%w: region %v has non-finite components",
			ErrInvalidArgument, r)
	}

	if r.Empty() {
		return fmt.Errorf("%w: region %v has non-positive size",
			ErrInvalidArgument, r)
	}

	return nil
}

// Translate returns the region moved by (dx, dy)
func (r Region) Translate(dx, dy float64) Region {
	r.X += dx
	r.Y += dy
	return r
}

// Scale returns the region scaled by s about its center
func (r Region) Scale(s float64) Region {
	cx, cy := r.Center()
	return RegionFromCenter(cx, cy, r.Width*s, r.Height*s)
}

// Intersect returns the overlapping region of r and o, which is empty when
// they do not overlap
func (r Region) Intersect(o Region) Region {

	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.BRX(), o.BRX())
	y2 := math.Min(r.BRY(), o.BRY())

	if x2 <= x1 || y2 <= y1 {
		return Region{}
	}

	return Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// IoU calculates the Intersection over Union with another region
func (r Region) IoU(o Region) float64 {

	inter := r.Intersect(o).Area()

	if inter == 0 {
		return 0
	}

	return inter / (r.Area() + o.Area() - inter)
}

// String formats the region as [x y w h]
func (r Region) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X, r.Y, r.Width, r.Height)
}
