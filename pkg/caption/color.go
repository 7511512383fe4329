package caption

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// UnitColor converts 0–1 float channels and a 0–1 opacity to an 8-bit colour.
// Out of range channels are clamped.
func UnitColor(r, g, b, opacity float64) types.RGBA {
	c := colorful.Color{R: r, G: g, B: b}.Clamped()
	r8, g8, b8 := c.RGB255()
	return types.RGBA{R: r8, G: g8, B: b8, A: unitToByte(opacity)}
}

// PercentOpacity maps a 0–100 percentage onto 0–1
func PercentOpacity(p float64) float64 {
	return p / 100
}

func unitToByte(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

func toNRGBA(c types.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
