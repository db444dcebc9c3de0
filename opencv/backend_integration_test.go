//go:build integration
// +build integration

package opencv

import (
	"errors"
	"github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
	"image"
	"image/color"
	"testing"
)

// squareFrame draws a textured square on a dark background with its top left
// corner at x,y
func squareFrame(t *testing.T, x, y int) *cvtrack.Frame {

	mat := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer mat.Close()

	gocv.Rectangle(&mat, image.Rect(x, y, x+30, y+30),
		color.RGBA{R: 220, G: 220, B: 220, A: 255}, -1)
	gocv.Rectangle(&mat, image.Rect(x+8, y+8, x+18, y+18),
		color.RGBA{R: 40, G: 40, B: 40, A: 255}, -1)
	gocv.Line(&mat, image.Pt(x, y+25), image.Pt(x+30, y+5),
		color.RGBA{R: 120, G: 120, B: 120, A: 255}, 2)

	f, err := FrameFromMat(mat)

	if err != nil {
		t.Fatalf("FrameFromMat failed: %v", err)
	}

	return f
}

func TestNativeTrackers(t *testing.T) {

	b, err := NewBackend()

	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}

	t.Logf("OpenCV version %s", b.Version())

	variants := cvtrack.BackendVariants(b)

	if len(variants) == 0 {
		t.Fatalf("no variants provided on OpenCV %s", b.Version())
	}

	for _, v := range variants {
		t.Run(v.String(), func(t *testing.T) {

			tr, err := cvtrack.New(b, v, nil)

			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			defer tr.Close()

			ok, err := tr.Init(squareFrame(t, 50, 40), cvtrack.R(50, 40, 30, 30))

			if err != nil || !ok {
				t.Fatalf("Init failed: %v %v", ok, err)
			}

			for i := 1; i <= 5; i++ {
				region, err := tr.Update(squareFrame(t, 50+i*2, 40+i))

				if err != nil {
					t.Fatalf("Update %d failed: %v", i, err)
				}

				if region == nil {
					t.Fatalf("Update %d lost the target", i)
				}

				if region.Width <= 0 || region.Height <= 0 {
					t.Errorf("Update %d returned empty region %s", i, region)
				}
			}
		})
	}
}

func TestUnboundVariants(t *testing.T) {

	b, err := NewBackend()

	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}

	_, err = b.NewEngine(cvtrack.MOSSE, nil)

	if !errors.Is(err, cvtrack.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	if b.Binds(cvtrack.MOSSE) || !b.Binds(cvtrack.KCF) {
		t.Errorf("unexpected bound variants")
	}

	_, err = cvtrack.New(b, cvtrack.Boosting, nil)

	if !errors.Is(err, cvtrack.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from New, got %v", err)
	}

	kcf := cvtrack.DefaultKCFParams()
	kcf.Padding = 2

	_, err = b.NewEngine(cvtrack.KCF, kcf)

	if !errors.Is(err, cvtrack.ErrUnsupportedParameterization) {
		t.Errorf("expected ErrUnsupportedParameterization, got %v", err)
	}
}
