package caption

import (
	"context"
	"image"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// TextRequest describes a block of text to rasterize
type TextRequest struct {
	Text     string
	MaxWidth int
	FontSize float64
	Color    types.RGBA
}

// TextRasterizer word-wraps text within MaxWidth and returns the text layer
// together with its measured height in pixels.
type TextRasterizer interface {
	Rasterize(ctx context.Context, req TextRequest) (image.Image, int, error)
}

// OpenTypeRasterizer draws left-aligned text with golang.org/x/image/font
type OpenTypeRasterizer struct {
	fonts *FontManager
}

// NewOpenTypeRasterizer creates a rasterizer backed by fonts
func NewOpenTypeRasterizer(fonts *FontManager) *OpenTypeRasterizer {
	return &OpenTypeRasterizer{fonts: fonts}
}

// Rasterize implements TextRasterizer
func (r *OpenTypeRasterizer) Rasterize(ctx context.Context, req TextRequest) (image.Image, int, error) {
	face, err := r.fonts.Face(req.FontSize)
	if err != nil {
		return nil, 0, err
	}
	defer face.Close()

	lines := layoutLines(req.Text, req.MaxWidth, face)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	height := len(lines) * lineHeight

	layer := image.NewNRGBA(image.Rect(0, 0, req.MaxWidth, height))
	drawer := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(toNRGBA(req.Color)),
		Face: face,
	}
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if line == "" {
			continue
		}
		drawer.Dot = fixed.P(0, i*lineHeight+ascent)
		drawer.DrawString(line)
	}

	return layer, height, nil
}

// layoutLines keeps explicit line breaks and wraps each paragraph to maxWidth
func layoutLines(text string, maxWidth int, face font.Face) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapText(para, maxWidth, face)...)
	}
	return lines
}

// wrapText breaks text into lines that each fit within maxWidth pixels.
// Words wider than a whole line are split between characters.
func wrapText(text string, maxWidth int, face font.Face) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	fits := func(s string) bool {
		return font.MeasureString(face, s).Ceil() <= maxWidth
	}

	var lines []string
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
		} else if candidate := current + " " + word; fits(candidate) {
			current = candidate
			continue
		} else {
			lines = append(lines, current)
			current = word
		}
		for !fits(current) && utf8.RuneCountInString(current) > 1 {
			head, tail := splitToWidth(current, maxWidth, face)
			lines = append(lines, head)
			current = tail
		}
	}
	return append(lines, current)
}

// splitToWidth returns the longest prefix of s (at least one rune) that fits
func splitToWidth(s string, maxWidth int, face font.Face) (string, string) {
	cut := 0
	for i := range s {
		if i > 0 && font.MeasureString(face, s[:i]).Ceil() > maxWidth {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		cut = size
	}
	return s[:cut], s[cut:]
}
