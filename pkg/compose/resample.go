// Package compose loads, scales, overlays and saves the wallpaper images.
package compose

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Resampler scales an image to exact pixel dimensions
type Resampler interface {
	Resize(img image.Image, width, height int) image.Image
}

// LanczosResampler resizes with imaging's Lanczos filter
type LanczosResampler struct{}

// Resize implements Resampler
func (LanczosResampler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// NfntResampler resizes with nfnt/resize's Lanczos3 interpolation
type NfntResampler struct{}

// Resize implements Resampler
func (NfntResampler) Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

// NewResampler returns the resampler registered under name
func NewResampler(name string) (Resampler, error) {
	switch name {
	case "", "lanczos":
		return LanczosResampler{}, nil
	case "nfnt":
		return NfntResampler{}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", name)
	}
}
