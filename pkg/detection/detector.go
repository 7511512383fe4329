package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/spaceoddity/pkg/client"
	"github.com/menta2k/spaceoddity/pkg/types"
)

// DefaultPrompt asks the model for the box of the dominant subject
const DefaultPrompt = `You are an image subject locator.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
  },
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- The box should tightly include the visually dominant subject (planets, galaxies, nebulae, people, buildings; else the brightest structure).
- Description must be brief and factual.
- If no subject is found, return:
  {"primary":{"label":"none","confidence":0.0,"box":{"x":0,"y":0,"w":0,"h":0}},"description":"no subject"}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Detector turns a vision model answer into subject regions
type Detector struct {
	client     client.VisionClient
	model      string
	sampleSize int
	quality    int
}

// NewDetector creates a detector that asks model through client. Images are
// downscaled so that their long side is at most sampleSize before sending.
func NewDetector(client client.VisionClient, model string, sampleSize int) *Detector {
	return &Detector{client: client, model: model, sampleSize: sampleSize, quality: 85}
}

// Locate implements client.SubjectLocator. An image without a subject yields
// no regions.
func (d *Detector) Locate(ctx context.Context, img image.Image) ([]types.Region, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	data, err := d.prepare(img)
	if err != nil {
		return nil, err
	}

	result, err := d.client.LocateSubject(ctx, d.model, DefaultPrompt, data)
	if err != nil {
		return nil, err
	}
	result = validateResult(result)
	if isNone(result) {
		return nil, nil
	}

	return []types.Region{boxToRegion(result.Primary.Box, b.Dx(), b.Dy(), result.Primary.Confidence)}, nil
}

// prepare downscales img and encodes it as JPEG
func (d *Detector) prepare(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if d.sampleSize > 0 && (w > d.sampleSize || h > d.sampleSize) {
		if w >= h {
			img = imaging.Resize(img, d.sampleSize, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, d.sampleSize, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(d.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode sample: %w", err)
	}
	return buf.Bytes(), nil
}

// validateResult clamps the box and marks fallback answers as "none"
func validateResult(result *types.LocateResult) *types.LocateResult {
	out := *result
	out.Primary.Box = normalizeBox(out.Primary.Box)
	out.Primary.Confidence = clamp(out.Primary.Confidence, 0, 1)

	fallbackIndicators := []string{"unclear", "empty", "parse", "error", "fallback", "non-json"}
	label := strings.ToLower(out.Primary.Label)
	desc := strings.ToLower(out.Description)
	for _, indicator := range fallbackIndicators {
		if strings.Contains(label, indicator) || strings.Contains(desc, indicator) {
			out.Primary.Label = "none"
			out.Primary.Confidence = 0
			break
		}
	}
	return &out
}

func isNone(result *types.LocateResult) bool {
	return strings.EqualFold(result.Primary.Label, "none") ||
		result.Primary.Box.W <= 0 || result.Primary.Box.H <= 0
}

// boxToRegion maps a normalized box onto a w x h image. Confidence becomes
// the region score, with a floor so an unsure subject still counts.
func boxToRegion(b types.Box, w, h int, confidence float64) types.Region {
	x0 := int(b.X*float64(w) + 0.5)
	y0 := int(b.Y*float64(h) + 0.5)
	x1 := int((b.X+b.W)*float64(w) + 0.5)
	y1 := int((b.Y+b.H)*float64(h) + 0.5)
	return types.Region{
		X: x0, Y: y0,
		Width: max(x1-x0, 1), Height: max(y1-y0, 1),
		Score: max(confidence, 0.1),
	}
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox keeps the box inside the unit square
func normalizeBox(b types.Box) types.Box {
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}
