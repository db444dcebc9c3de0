package render

import (
	"fmt"
	"github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// boxLabel holds the precalculated placement of a label drawn above a box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// slotColor returns the color assigned to a MultiTracker slot
func slotColor(slot int) color.RGBA {
	return slotColors[slot%len(slotColors)]
}

// TrackerBoxes renders the region of each MultiTracker slot with a label of
// the slot's variant and index.  Regions and variants are indexed by slot as
// returned by MultiTracker.Update and MultiTracker.Variants.  Slots whose
// target was lost have a nil region and are not drawn
func TrackerBoxes(img *gocv.Mat, regions []*cvtrack.Region,
	variants []cvtrack.Variant, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(regions))

	for slot, region := range regions {

		if region == nil {
			continue
		}

		useClr := slotColor(slot)
		rect := region.Rectangle()

		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("#%d", slot)

		if slot < len(variants) {
			text = fmt.Sprintf("%s #%d", variants[slot], slot)
		}

		labels = append(labels, placeLabel(rect, text, useClr, font, lineThickness))
	}

	// labels are drawn last so boxes of other targets never cover them
	drawLabels(img, labels, font)
}

// LostSlots writes a line in the top left corner of the image listing the
// slots whose target is currently lost
func LostSlots(img *gocv.Mat, regions []*cvtrack.Region, font Font) {

	lost := ""

	for slot, region := range regions {
		if region == nil {
			lost += fmt.Sprintf(" #%d", slot)
		}
	}

	if lost == "" {
		return
	}

	text := "Lost:" + lost
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)
	top := textSize.Y + font.TopPad + font.BottomPad

	label := boxLabel{
		rect:    image.Rect(0, 0, textSize.X+font.LeftPad+font.RightPad, top),
		clr:     Gray,
		text:    text,
		textPos: image.Pt(font.LeftPad, top-font.BottomPad),
	}

	drawLabels(img, []boxLabel{label}, font)
}

// placeLabel calculates the position of a label above the box according to
// the font alignment
func placeLabel(box image.Rectangle, text string, clr color.RGBA, font Font,
	lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, box.Min.Y),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad),
	}
}

// drawLabels paints each label's background box then its text
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {
	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)

		gocv.PutTextWithParams(img, l.text, l.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
