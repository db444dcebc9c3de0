package cvtrack

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"image"
	"image/color"
	"testing"
)

func TestNewFrame(t *testing.T) {

	pix := make([]uint8, 12)

	f, err := NewFrame(4, 3, pix)
	require.NoError(t, err)

	// the buffer is shared not copied
	pix[5] = 9
	assert.Equal(t, uint8(9), f.At(1, 1))

	_, err = NewFrame(0, 3, pix)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewFrame(4, 4, pix)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var nilFrame *Frame
	assert.ErrorIs(t, nilFrame.Validate(), ErrInvalidArgument)
}

func TestFrameAtClamps(t *testing.T) {

	f, err := NewFrame(2, 2, []uint8{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, uint8(1), f.At(-5, -5))
	assert.Equal(t, uint8(4), f.At(10, 10))
	assert.Equal(t, uint8(2), f.At(1, -1))
	assert.Equal(t, R(0, 0, 2, 2), f.Bounds())
}

func TestFrameFromImage(t *testing.T) {

	// color images are converted to gray
	rgba := image.NewRGBA(image.Rect(0, 0, 3, 2))

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			rgba.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	rgba.Set(0, 0, color.RGBA{A: 255})

	f, err := FrameFromImage(rgba)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, uint8(0), f.At(0, 0))
	assert.Equal(t, uint8(255), f.At(2, 1))

	// compact gray images are wrapped
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	g, err := FrameFromImage(gray)
	require.NoError(t, err)

	gray.Pix[0] = 77
	assert.Equal(t, uint8(77), g.At(0, 0))

	_, err = FrameFromImage(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FrameFromImage(image.NewGray(image.Rectangle{}))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFrameResize(t *testing.T) {

	pix := make([]uint8, 8*8)

	for i := range pix {
		pix[i] = 100
	}

	f, err := NewFrame(8, 8, pix)
	require.NoError(t, err)

	small, err := f.Resize(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, small.Width)
	assert.Equal(t, 2, small.Height)
	assert.Equal(t, uint8(100), small.At(1, 1))

	_, err = f.Resize(0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, f.Pix, f.Gray().Pix)
}
