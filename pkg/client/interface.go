package client

import (
	"context"
	"image"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// SubjectLocator finds the regions of an image a caption should stay clear of.
// Regions are in the pixel coordinates of img.
type SubjectLocator interface {
	Locate(ctx context.Context, img image.Image) ([]types.Region, error)
}

// VisionClient queries a remote vision model for the primary subject of an
// encoded image
type VisionClient interface {
	LocateSubject(ctx context.Context, model, prompt string, img []byte) (*types.LocateResult, error)
}
