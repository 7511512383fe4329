package caption

import (
	"fmt"
	"image"

	"golang.org/x/image/vector"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// kappa places cubic control points for a quarter circle
const kappa = 0.5522847498

// RoundedRect renders an anti-aliased w×h rectangle with rounded corners
// filled with fill. The radius is limited to half the shorter side.
func RoundedRect(w, h, radius int, fill types.RGBA) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid backdrop size %dx%d", w, h)
	}

	fw, fh := float32(w), float32(h)
	r := float32(max(0, min(radius, w/2, h/2)))
	k := r * kappa

	z := vector.NewRasterizer(w, h)
	z.MoveTo(r, 0)
	z.LineTo(fw-r, 0)
	if r > 0 {
		z.CubeTo(fw-r+k, 0, fw, r-k, fw, r)
	}
	z.LineTo(fw, fh-r)
	if r > 0 {
		z.CubeTo(fw, fh-r+k, fw-r+k, fh, fw-r, fh)
	}
	z.LineTo(r, fh)
	if r > 0 {
		z.CubeTo(r-k, fh, 0, fh-r+k, 0, fh-r)
	}
	z.LineTo(0, r)
	if r > 0 {
		z.CubeTo(0, r-k, r-k, 0, r, 0)
	}
	z.ClosePath()

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.NewUniform(toNRGBA(fill)), image.Point{})
	return dst, nil
}
