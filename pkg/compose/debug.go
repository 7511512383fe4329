package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/menta2k/spaceoddity/pkg/types"
)

var (
	subjectColor  = color.NRGBA{0, 255, 0, 255}   // detected subjects
	bubbleColor   = color.NRGBA{255, 204, 0, 255} // caption bubble
	viewportColor = color.NRGBA{0, 170, 255, 255} // visible part of the screen
)

// DebugOverlay draws the layout decisions on a copy of img: subjects in green,
// the bubble in gold and the visible viewport in blue
func DebugOverlay(img image.Image, subjects []types.Region, bubble, viewport image.Rectangle) *image.NRGBA {
	out := imaging.Clone(img)
	b := out.Bounds()
	stroke := max(2, min(b.Dx(), b.Dy())/250)

	drawFrame(out, viewport, viewportColor, stroke)
	for _, s := range subjects {
		drawFrame(out, image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height), subjectColor, stroke)
	}
	if !bubble.Empty() {
		drawFrame(out, bubble, bubbleColor, stroke)
	}
	return out
}

// drawFrame strokes the inside edge of r, clipped to img
func drawFrame(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	stroke = min(stroke, r.Dx()/2+1, r.Dy()/2+1)
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke),
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y),
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}
