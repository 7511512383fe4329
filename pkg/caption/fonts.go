package caption

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/menta2k/spaceoddity/internal/logger"
)

// FontManager parses one font and hands out faces at any size.
// An empty or unreadable path falls back to the embedded Go Regular font.
type FontManager struct {
	name   string
	parsed *opentype.Font
}

// NewFontManager loads the font at path, or the embedded font when path is empty
func NewFontManager(path string) (*FontManager, error) {
	data := goregular.TTF
	name := "goregular"

	if path != "" {
		custom, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("could not load font, using default", zap.String("path", path), zap.Error(err))
		} else {
			data = custom
			name = path
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}

	return &FontManager{name: name, parsed: parsed}, nil
}

// Name identifies the loaded font
func (fm *FontManager) Name() string {
	return fm.name
}

// Face returns a face where size is measured in pixels
func (fm *FontManager) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %.1f", size)
	}
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}
