package render

import "image/color"

var (
	// slotColors are assigned to MultiTracker slots in turn, neighbouring
	// entries are far apart in hue so adjacent slots are easy to tell apart
	slotColors = []color.RGBA{
		{R: 230, G: 25, B: 75, A: 255},  // red
		{R: 60, G: 180, B: 75, A: 255},  // green
		{R: 0, G: 130, B: 200, A: 255},  // blue
		{R: 245, G: 130, B: 48, A: 255}, // orange
		{R: 145, G: 30, B: 180, A: 255}, // purple
		{R: 70, G: 240, B: 240, A: 255}, // cyan
		{R: 240, G: 50, B: 230, A: 255}, // magenta
		{R: 210, G: 245, B: 60, A: 255}, // lime
		{R: 0, G: 128, B: 128, A: 255},  // teal
		{R: 170, G: 110, B: 40, A: 255}, // brown
		{R: 128, G: 0, B: 0, A: 255},    // maroon
		{R: 0, G: 0, B: 128, A: 255},    // navy
	}

	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}

	// Gray is used for the label of a lost target
	Gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)
