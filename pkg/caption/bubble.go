package caption

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/spaceoddity/pkg/types"
)

var (
	// ErrInvalidLayout is returned when the padding leaves no room for text
	ErrInvalidLayout = errors.New("invalid caption layout")
	// ErrRender is returned when the text or backdrop cannot be rasterized
	ErrRender = errors.New("caption render failed")
)

// Style holds the visual settings of a caption bubble
type Style struct {
	Width         int
	CornerRadius  int
	BorderPadding int
	FontSize      float64
	Foreground    types.RGBA
	Background    types.RGBA
}

// Bubble is a finished caption raster
type Bubble struct {
	Image      *image.NRGBA
	Size       types.Size
	TextHeight int
}

// Builder renders caption bubbles through a TextRasterizer
type Builder struct {
	text TextRasterizer
}

// NewBuilder creates a Builder using the given text rasterizer
func NewBuilder(text TextRasterizer) *Builder {
	return &Builder{text: text}
}

// TextWidth is the room left for text inside a bubble of the given style
func (s Style) TextWidth() int {
	return s.Width - 2*s.BorderPadding
}

// Build wraps text to the bubble width, sizes the bubble around it and
// composites the text layer centered over a rounded backdrop.
func (b *Builder) Build(ctx context.Context, text string, style Style) (Bubble, error) {
	textWidth := style.TextWidth()
	if textWidth <= 0 {
		return Bubble{}, fmt.Errorf("%w: width %d with border padding %d leaves %dpx for text",
			ErrInvalidLayout, style.Width, style.BorderPadding, textWidth)
	}

	layer, textHeight, err := b.text.Rasterize(ctx, TextRequest{
		Text:     text,
		MaxWidth: textWidth,
		FontSize: style.FontSize,
		Color:    style.Foreground,
	})
	if err != nil {
		return Bubble{}, fmt.Errorf("%w: text: %w", ErrRender, err)
	}

	height := textHeight + 2*style.BorderPadding
	backdrop, err := RoundedRect(style.Width, height, style.CornerRadius, style.Background)
	if err != nil {
		return Bubble{}, fmt.Errorf("%w: backdrop: %w", ErrRender, err)
	}

	img := backdrop
	if textHeight > 0 {
		img = imaging.OverlayCenter(backdrop, layer, 1.0)
	}

	return Bubble{
		Image:      img,
		Size:       types.Size{Width: style.Width, Height: height},
		TextHeight: textHeight,
	}, nil
}
