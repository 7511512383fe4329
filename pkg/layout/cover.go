// Package layout implements the geometry of a captioned wallpaper: scaling a
// source image so it covers the display, the overhang that scaling leaves on
// each axis, and the nine anchored placements of the caption bubble.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// ErrInvalidDimension is returned when a source or viewport size is not strictly positive
var ErrInvalidDimension = errors.New("invalid dimension")

// CoverResult describes a source image scaled to cover a viewport
type CoverResult struct {
	ScaleW float64
	ScaleH float64
	// Scale is the divisor applied to both source dimensions.
	Scale float64
	Size  types.Size
}

// Cover computes the scale factor and resulting dimensions that make source
// fill viewport completely. The smaller of the two axis ratios is used as the
// divisor, so one axis matches the viewport and the other overflows it.
// The result is never smaller than the viewport on either axis.
func Cover(source, viewport types.Size) (CoverResult, error) {
	if !source.Positive() {
		return CoverResult{}, fmt.Errorf("%w: source %s", ErrInvalidDimension, source)
	}
	if !viewport.Positive() {
		return CoverResult{}, fmt.Errorf("%w: viewport %s", ErrInvalidDimension, viewport)
	}

	scaleW := float64(source.Width) / float64(viewport.Width)
	scaleH := float64(source.Height) / float64(viewport.Height)
	scale := math.Min(scaleW, scaleH)

	w := int(math.Round(float64(source.Width) / scale))
	h := int(math.Round(float64(source.Height) / scale))

	// rounding can leave an axis one pixel short
	w = max(w, viewport.Width)
	h = max(h, viewport.Height)

	return CoverResult{
		ScaleW: scaleW,
		ScaleH: scaleH,
		Scale:  scale,
		Size:   types.Size{Width: w, Height: h},
	}, nil
}

// Overhang is the part of a scaled image hidden past each viewport edge
type Overhang struct {
	X float64
	Y float64
}

// OverhangOf returns half the difference between scaled and viewport on each axis
func OverhangOf(scaled, viewport types.Size) Overhang {
	return Overhang{
		X: float64(scaled.Width-viewport.Width) / 2,
		Y: float64(scaled.Height-viewport.Height) / 2,
	}
}
