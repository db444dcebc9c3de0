package cvtrack

import (
	"fmt"
	"golang.org/x/image/draw"
	"image"
)

// Frame is a read-only 8-bit grayscale image buffer given to trackers.  Pixels
// are stored row major with a stride equal to Width.  Trackers never modify a
// Frame so the same Frame may be shared by all trackers of an update
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame wraps the given pixel buffer as a Frame without copying it
func NewFrame(width, height int, pix []uint8) (*Frame, error) {

	f := &Frame{Width: width, Height: height, Pix: pix}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// FrameFromImage converts any image to a grayscale Frame.  Grayscale images
// with a compact stride are wrapped without copying
func FrameFromImage(img image.Image) (*Frame, error) {

	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}

	b := img.Bounds()

	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}

	if g, ok := img.(*image.Gray); ok && g.Stride == b.Dx() {
		off := g.PixOffset(b.Min.X, b.Min.Y)
		return NewFrame(b.Dx(), b.Dy(), g.Pix[off:off+b.Dx()*b.Dy()])
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	return NewFrame(b.Dx(), b.Dy(), gray.Pix)
}

// Validate checks the frame has a size and a pixel buffer matching it
func (f *Frame) Validate() error {

	if f == nil {
		return fmt.Errorf("%w: missing frame", ErrInvalidArgument)
	}

	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: frame has invalid size %dx%d",
			ErrInvalidArgument, f.Width, f.Height)
	}

	if len(f.Pix) < f.Width*f.Height {
		return fmt.Errorf("%w: frame buffer has %d bytes, expected %d",
			ErrInvalidArgument, len(f.Pix), f.Width*f.Height)
	}

	return nil
}

// At returns the pixel value at x, y.  Coordinates outside the frame are
// clamped to the border
func (f *Frame) At(x, y int) uint8 {

	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}

	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}

	return f.Pix[y*f.Width+x]
}

// Bounds returns the frame area as a Region
func (f *Frame) Bounds() Region {
	return Region{Width: float64(f.Width), Height: float64(f.Height)}
}

// Gray returns an image.Gray sharing the frame's pixel buffer.  The returned
// image must not be modified
func (f *Frame) Gray() *image.Gray {
	return &image.Gray{
		Pix:    f.Pix[:f.Width*f.Height],
		Stride: f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Resize returns a new Frame scaled to the given dimensions using bilinear
// interpolation
func (f *Frame) Resize(width, height int) (*Frame, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid resize dimensions %dx%d",
			ErrInvalidArgument, width, height)
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), f.Gray(), f.Gray().Bounds(),
		draw.Src, nil)

	return NewFrame(width, height, dst.Pix)
}
