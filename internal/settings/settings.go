// Package settings loads the run settings: where files live, how the output
// is encoded and which subject detector backs auto positioning.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/menta2k/spaceoddity/internal/utils"
)

const appName = "spaceoddity"

// Settings holds the run settings
type Settings struct {
	FontPath      string        `koanf:"font_path"`     // empty uses the embedded Go font
	OutputPath    string        `koanf:"output_path"`   // final wallpaper file
	OutputFormat  string        `koanf:"output_format"` // jpg, png or webp; empty follows output_path
	Quality       int           `koanf:"quality"`
	Lossless      bool          `koanf:"lossless"`
	Resampler     string        `koanf:"resampler"` // lanczos or nfnt
	RenderTimeout time.Duration `koanf:"render_timeout"`
	DetectTimeout time.Duration `koanf:"detect_timeout"`
	LogPath       string        `koanf:"log_path"`
	Debug         bool          `koanf:"debug"`

	Detector DetectorSettings `koanf:"detector"`
}

// DetectorSettings selects the subject detector used for auto positioning
type DetectorSettings struct {
	Backend string `koanf:"backend"` // saliency or ollama
	URL     string `koanf:"url"`
	Model   string `koanf:"model"`
	// SampleSize is the long side, in pixels, of the image handed to the detector
	SampleSize int `koanf:"sample_size"`
}

// Default returns settings with default values
func Default() *Settings {
	return &Settings{
		FontPath:      "",
		OutputPath:    filepath.Join(xdg.DataHome, appName, "wallpaper.jpg"),
		OutputFormat:  "",
		Quality:       90,
		Lossless:      false,
		Resampler:     "lanczos",
		RenderTimeout: 10 * time.Second,
		DetectTimeout: 5 * time.Minute,
		LogPath:       filepath.Join(xdg.StateHome, appName, appName+".log"),
		Debug:         false,
		Detector: DetectorSettings{
			Backend:    "saliency",
			URL:        "http://localhost:11434",
			Model:      "openbmb/minicpm-v4.5",
			SampleSize: 512,
		},
	}
}

// Load reads the given files in order, later files overriding earlier ones.
// Missing files are skipped. With no paths the default locations are used.
func Load(paths ...string) (*Settings, error) {
	if len(paths) == 0 {
		paths = DefaultPaths()
	}

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
		}
	}

	s := Default()
	if err := k.UnmarshalWithConf("", s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	s.FontPath = utils.ExpandPath(s.FontPath)
	s.OutputPath = utils.ExpandPath(s.OutputPath)
	s.LogPath = utils.ExpandPath(s.LogPath)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultPaths lists the settings files in priority order (last wins)
func DefaultPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "settings.toml"),
		"settings.toml",
	}
}

// Validate checks ranges and enumerations
func (s *Settings) Validate() error {
	if s.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if _, err := s.Format(); err != nil {
		return err
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}
	switch s.Resampler {
	case "lanczos", "nfnt":
	default:
		return fmt.Errorf("resampler must be lanczos or nfnt, got %q", s.Resampler)
	}
	if s.RenderTimeout <= 0 {
		return fmt.Errorf("render_timeout must be positive")
	}
	if s.DetectTimeout <= 0 {
		return fmt.Errorf("detect_timeout must be positive")
	}
	switch s.Detector.Backend {
	case "saliency", "ollama":
	default:
		return fmt.Errorf("detector.backend must be saliency or ollama, got %q", s.Detector.Backend)
	}
	if s.Detector.SampleSize < 32 {
		return fmt.Errorf("detector.sample_size must be at least 32")
	}
	return nil
}

// Format returns the output encoding, derived from OutputPath when OutputFormat is empty
func (s *Settings) Format() (string, error) {
	if s.OutputFormat != "" {
		return utils.NormalizeFormat(s.OutputFormat)
	}
	return utils.NormalizeFormat(utils.GetFileExtension(s.OutputPath))
}
