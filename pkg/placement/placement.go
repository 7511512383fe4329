// Package placement picks the caption anchor that covers the least of the
// detected subjects.
package placement

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/spaceoddity/pkg/client"
	"github.com/menta2k/spaceoddity/pkg/layout"
	"github.com/menta2k/spaceoddity/pkg/types"
)

// Frame describes the geometry every candidate anchor shares
type Frame struct {
	Scaled   types.Size
	Viewport types.Size
	Bubble   types.Size
	Padding  layout.Padding
}

// Candidate is one scored anchor
type Candidate struct {
	Anchor layout.Anchor
	Rect   image.Rectangle
	Cost   float64
}

// Score returns the cost of every anchor, in anchor order. The cost is the
// bubble area covering subjects, weighted by subject score.
func Score(f Frame, subjects []types.Region) []Candidate {
	anchors := layout.Anchors()
	out := make([]Candidate, 0, len(anchors))
	for _, a := range anchors {
		rect := layout.Rect(f.Scaled, f.Viewport, f.Bubble, f.Padding, a)
		out = append(out, Candidate{Anchor: a, Rect: rect, Cost: cost(rect, subjects)})
	}
	return out
}

func cost(rect image.Rectangle, subjects []types.Region) float64 {
	bubble := types.Region{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
	total := 0.0
	for _, s := range subjects {
		total += float64(bubble.Overlap(s)) * s.Score
	}
	return total
}

// Choose returns the anchor with the lowest cost. Ties go to preferred, then
// to the lowest anchor value. With no subjects preferred is returned.
func Choose(f Frame, preferred layout.Anchor, subjects []types.Region) layout.Anchor {
	if !preferred.Valid() {
		preferred = layout.DefaultAnchor
	}
	if len(subjects) == 0 {
		return preferred
	}

	candidates := Score(f, subjects)
	best := candidates[preferred]
	for _, c := range candidates {
		if c.Cost < best.Cost {
			best = c
		}
	}
	return best.Anchor
}

// Planner runs a subject locator on a downscaled copy of the image and maps
// the regions back to full size
type Planner struct {
	locator    client.SubjectLocator
	sampleSize int
}

// NewPlanner creates a planner. sampleSize is the long side of the copy handed
// to the locator; zero disables downscaling.
func NewPlanner(locator client.SubjectLocator, sampleSize int) *Planner {
	return &Planner{locator: locator, sampleSize: sampleSize}
}

// Subjects locates subjects in img, returning regions in img coordinates
func (p *Planner) Subjects(ctx context.Context, img image.Image) ([]types.Region, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}

	sample := img
	if p.sampleSize > 0 && (w > p.sampleSize || h > p.sampleSize) {
		sample = imaging.Fit(img, p.sampleSize, p.sampleSize, imaging.Box)
	}

	regions, err := p.locator.Locate(ctx, sample)
	if err != nil {
		return nil, err
	}

	sb := sample.Bounds()
	return ScaleRegions(regions, types.Size{Width: sb.Dx(), Height: sb.Dy()}, types.Size{Width: w, Height: h}), nil
}

// Plan locates subjects and chooses the anchor for f
func (p *Planner) Plan(ctx context.Context, img image.Image, f Frame, preferred layout.Anchor) (layout.Anchor, []types.Region, error) {
	subjects, err := p.Subjects(ctx, img)
	if err != nil {
		return preferred, nil, err
	}
	return Choose(f, preferred, subjects), subjects, nil
}

// ScaleRegions maps regions measured on an image of size from onto one of size to
func ScaleRegions(regions []types.Region, from, to types.Size) []types.Region {
	if from == to || !from.Positive() {
		return regions
	}
	sx := float64(to.Width) / float64(from.Width)
	sy := float64(to.Height) / float64(from.Height)

	out := make([]types.Region, len(regions))
	for i, r := range regions {
		x0 := int(math.Floor(float64(r.X) * sx))
		y0 := int(math.Floor(float64(r.Y) * sy))
		x1 := int(math.Ceil(float64(r.X+r.Width) * sx))
		y1 := int(math.Ceil(float64(r.Y+r.Height) * sy))
		out[i] = types.Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0, Score: r.Score}
	}
	return out
}
