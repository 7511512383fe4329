// Package vision finds visually busy regions of an image so that a caption
// can be kept away from them.
package vision

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// SubjectDetector provides functionality to detect subjects/important regions in images
type SubjectDetector struct {
	config DetectionConfig
}

// DetectionConfig holds configuration for subject detection
type DetectionConfig struct {
	EdgeThreshold   float64
	ContrastWeight  float64
	ColorWeight     float64
	MinSubjectRatio float64
	MaxRegions      int
}

// New creates a new SubjectDetector with default configuration
func New() *SubjectDetector {
	return &SubjectDetector{
		config: DetectionConfig{
			EdgeThreshold:   0.01,
			ContrastWeight:  0.3,
			ColorWeight:     0.2,
			MinSubjectRatio: 0.01,
			MaxRegions:      10,
		},
	}
}

// NewWithConfig creates a new SubjectDetector with custom configuration
func NewWithConfig(config DetectionConfig) *SubjectDetector {
	if config.MaxRegions <= 0 {
		config.MaxRegions = 10
	}
	return &SubjectDetector{config: config}
}

// Locate implements client.SubjectLocator
func (d *SubjectDetector) Locate(ctx context.Context, img image.Image) ([]types.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.DetectSubjects(img), nil
}

// DetectSubjects analyzes an image and returns regions of interest, best first
func (d *SubjectDetector) DetectSubjects(img image.Image) []types.Region {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 3 || height < 3 {
		return nil
	}

	sal := d.saliency(img)
	regions := d.scanWindows(sal, width, height)
	regions = d.filterRegions(regions, width, height)

	if len(regions) > d.config.MaxRegions {
		regions = regions[:d.config.MaxRegions]
	}
	return regions
}

// summedArea is an integral image of saliency values
type summedArea struct {
	w, h int
	sum  []float64 // (w+1)*(h+1)
}

func (s *summedArea) mean(x, y, w, h int) float64 {
	stride := s.w + 1
	x2, y2 := x+w, y+h
	total := s.sum[y2*stride+x2] - s.sum[y*stride+x2] - s.sum[y2*stride+x] + s.sum[y*stride+x]
	return total / float64(w*h)
}

// saliency combines local edge strength with brightness per pixel
func (d *SubjectDetector) saliency(img image.Image) *summedArea {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum[y*w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535
		}
	}

	stride := w + 1
	sa := &summedArea{w: w, h: h, sum: make([]float64, stride*(h+1))}
	for y := 0; y < h; y++ {
		row := 0.0
		for x := 0; x < w; x++ {
			v := 0.0
			if x > 0 && y > 0 && x < w-1 && y < h-1 {
				c := lum[y*w+x]
				edge := 0.0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						edge += math.Abs(c - lum[(y+dy)*w+x+dx])
					}
				}
				v = d.config.ContrastWeight*edge/8 + d.config.ColorWeight*c
			}
			row += v
			sa.sum[(y+1)*stride+x+1] = sa.sum[y*stride+x+1] + row
		}
	}
	return sa
}

// scanWindows slides square windows of several sizes over the image
func (d *SubjectDetector) scanWindows(sal *summedArea, width, height int) []types.Region {
	short := min(width, height)
	var regions []types.Region

	for _, div := range []int{12, 8, 6, 4, 3} {
		size := short / div
		if size < 8 {
			continue
		}
		step := max(size/4, 1)
		for y := 0; y+size <= height; y += step {
			for x := 0; x+size <= width; x += step {
				score := sal.mean(x, y, size, size)
				if score > d.config.EdgeThreshold {
					regions = append(regions, types.Region{X: x, Y: y, Width: size, Height: size, Score: score})
				}
			}
		}
	}
	return regions
}

// filterRegions drops tiny regions and sorts the rest by score
func (d *SubjectDetector) filterRegions(regions []types.Region, width, height int) []types.Region {
	minArea := int(float64(width*height) * d.config.MinSubjectRatio)

	filtered := regions[:0]
	for _, r := range regions {
		if r.Area() >= minArea {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	return filtered
}
