package opencv

import (
	"fmt"
	"github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
)

// FrameFromMat converts a BGR, BGRA or single channel 8 bit Mat into a
// grayscale Frame.  The Frame holds its own copy of the pixel data
func FrameFromMat(mat gocv.Mat) (*cvtrack.Frame, error) {

	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty mat", cvtrack.ErrInvalidArgument)
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		mat.CopyTo(&gray)
	case gocv.MatTypeCV8UC3:
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(mat, &gray, gocv.ColorBGRAToGray)
	default:
		return nil, fmt.Errorf("%w: unsupported mat type %d",
			cvtrack.ErrInvalidArgument, int(mat.Type()))
	}

	pix := make([]uint8, gray.Rows()*gray.Cols())

	// the Mat may be a non continuous region of interest so copy row by row
	for y := 0; y < gray.Rows(); y++ {
		for x := 0; x < gray.Cols(); x++ {
			pix[y*gray.Cols()+x] = gray.GetUCharAt(y, x)
		}
	}

	return cvtrack.NewFrame(gray.Cols(), gray.Rows(), pix)
}

// toBGR writes the frame into dst as a 3 channel BGR Mat, the input format
// OpenCV's trackers expect
func toBGR(frame *cvtrack.Frame, dst *gocv.Mat) error {

	gray, err := gocv.NewMatFromBytes(frame.Height, frame.Width,
		gocv.MatTypeCV8UC1, frame.Pix[:frame.Width*frame.Height])

	if err != nil {
		return fmt.Errorf("error creating mat from frame: %w", err)
	}

	defer gray.Close()

	gocv.CvtColor(gray, dst, gocv.ColorGrayToBGR)
	return nil
}
