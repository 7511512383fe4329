// Package spaceoddity turns a daily astronomy picture into a desktop
// wallpaper with a caption bubble.
//
// A run loads the persisted configuration, scales the source picture so it
// covers the screen, renders the caption text into a rounded bubble, places
// the bubble on the visible part of the picture and writes the result.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/spaceoddity"
//		"github.com/menta2k/spaceoddity/internal/settings"
//	)
//
//	func main() {
//		captioner, err := spaceoddity.New(settings.Default())
//		if err != nil {
//			log.Fatal(err)
//		}
//		res, err := captioner.Run(context.Background(), spaceoddity.RunOptions{Input: "apod.jpg"})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("wrote %s", res.OutputPath)
//	}
//
// The package consists of these components:
//
//  1. Layout (pkg/layout): cover scaling and the nine caption anchors
//  2. Caption (pkg/caption): text selection, wrapping and bubble rendering
//  3. Compose (pkg/compose): image loading, resampling, overlay and encoding
//  4. Placement (pkg/placement): subject-aware anchor selection, backed by
//     pkg/vision or a vision model served by Ollama
package spaceoddity

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/menta2k/spaceoddity/internal/config"
	"github.com/menta2k/spaceoddity/internal/logger"
	"github.com/menta2k/spaceoddity/internal/settings"
	"github.com/menta2k/spaceoddity/internal/utils"
	"github.com/menta2k/spaceoddity/pkg/caption"
	"github.com/menta2k/spaceoddity/pkg/client"
	"github.com/menta2k/spaceoddity/pkg/compose"
	"github.com/menta2k/spaceoddity/pkg/detection"
	"github.com/menta2k/spaceoddity/pkg/layout"
	"github.com/menta2k/spaceoddity/pkg/ollama"
	"github.com/menta2k/spaceoddity/pkg/placement"
	"github.com/menta2k/spaceoddity/pkg/types"
	"github.com/menta2k/spaceoddity/pkg/vision"
)

// Version of the captioner
const Version = "1.0.0"

// RunOptions holds the per-run overrides, usually taken from the command line
type RunOptions struct {
	// Input is a file path or http(s) URL. Empty uses files.source.
	Input string
	// Output overrides the configured output path
	Output string
	// Screen overrides the stored viewport when positive
	Screen types.Size
	// ConfigPath of the persisted store. Empty uses config.DefaultPath().
	ConfigPath string
	// Anchor overrides options.position when not nil
	Anchor *layout.Anchor
	// DebugOverlay also writes a copy showing subjects, bubble and viewport
	DebugOverlay bool
}

// Result describes what a run produced
type Result struct {
	OutputPath string
	DebugPath  string
	Source     types.Size
	Scaled     types.Size
	Viewport   types.Size
	Anchor     layout.Anchor
	Bubble     image.Rectangle
	Subjects   []types.Region
	Captioned  bool
	// Disabled is set when general.enabled is false and nothing was drawn
	Disabled bool
}

// Captioner runs the wallpaper pipeline
type Captioner struct {
	settings  *settings.Settings
	processor *compose.Processor
	builder   *caption.Builder
	planner   *placement.Planner
}

// New creates a Captioner from run settings
func New(s *settings.Settings) (*Captioner, error) {
	if s == nil {
		s = settings.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	resampler, err := compose.NewResampler(s.Resampler)
	if err != nil {
		return nil, err
	}
	fonts, err := caption.NewFontManager(s.FontPath)
	if err != nil {
		return nil, err
	}
	locator, err := newLocator(s.Detector)
	if err != nil {
		return nil, err
	}

	return &Captioner{
		settings:  s,
		processor: compose.NewProcessor(resampler),
		builder:   caption.NewBuilder(caption.NewOpenTypeRasterizer(fonts)),
		planner:   placement.NewPlanner(locator, s.Detector.SampleSize),
	}, nil
}

func newLocator(d settings.DetectorSettings) (client.SubjectLocator, error) {
	switch d.Backend {
	case "ollama":
		oc, err := ollama.NewClient(d.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return detection.NewDetector(oc, d.Model, d.SampleSize), nil
	default:
		return vision.New(), nil
	}
}

// SetLocator replaces the subject locator used for auto positioning
func (c *Captioner) SetLocator(locator client.SubjectLocator) {
	c.planner = placement.NewPlanner(locator, c.settings.Detector.SampleSize)
}

// Run executes one pass of the pipeline. Only an unusable viewport or a
// failure to load, scale or write the picture is returned as an error; a
// caption that cannot be rendered is logged and the picture is written
// without it.
func (c *Captioner) Run(ctx context.Context, opts RunOptions) (Result, error) {
	var res Result

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	doc, err := config.Load(configPath)
	if err != nil {
		logger.Warn("using default configuration", zap.String("path", configPath), zap.Error(err))
	}
	view, problems := doc.View()
	for _, p := range problems {
		logger.Warn("configuration section replaced by defaults", zap.Error(p))
	}

	if !view.General.Enabled {
		logger.Info("captioning disabled")
		res.Disabled = true
		c.persist(doc, configPath)
		return res, nil
	}

	res.Viewport = view.Geometry.Screen()
	if opts.Screen.Positive() {
		res.Viewport = opts.Screen
	}

	input := opts.Input
	if input == "" {
		input = view.Files.Source
	}
	if input == "" {
		return res, fmt.Errorf("%w: no source image", compose.ErrComposite)
	}

	outPath, format, err := c.output(opts)
	if err != nil {
		return res, err
	}
	if samePath(input, outPath) {
		return res, fmt.Errorf("%w: source %s is the output wallpaper", compose.ErrComposite, input)
	}

	src, err := c.processor.LoadImageSmart(ctx, input)
	if err != nil {
		return res, err
	}
	res.Source = compose.Size(src)

	cover, err := layout.Cover(res.Source, res.Viewport)
	if err != nil {
		return res, err
	}
	res.Scaled = cover.Size
	logger.Debug("cover scale",
		zap.Stringer("source", res.Source),
		zap.Stringer("viewport", res.Viewport),
		zap.Stringer("scaled", res.Scaled),
		zap.Float64("scale", cover.Scale))

	scaled, err := c.processor.Resize(src, res.Scaled)
	if err != nil {
		return res, err
	}

	final := scaled
	if view.Options.ShowCaption {
		if out, ok := c.caption(ctx, scaled, view.Options, view.Apod, opts, &res); ok {
			final = out
			res.Captioned = true
		}
	}

	if err := c.write(final, outPath, format, &res); err != nil {
		return res, err
	}
	if opts.DebugOverlay {
		c.writeDebug(scaled, &res)
	}

	doc.SetGeometry(res.Source, res.Viewport)
	doc.SetSource(input)
	doc.RotateFile(res.OutputPath)
	c.persist(doc, configPath)

	return res, nil
}

// caption builds, places and overlays the bubble. It reports false when the
// picture should be written without a caption.
func (c *Captioner) caption(ctx context.Context, scaled image.Image, o config.Options, apod config.Apod, opts RunOptions, res *Result) (image.Image, bool) {
	text := caption.SelectText(apod.Content(), o.Visibility())
	if text == "" {
		logger.Info("caption text is empty, skipping bubble")
		return nil, false
	}
	logger.Debug("caption text selected", zap.Int("runes", len([]rune(text))))

	renderCtx, cancel := context.WithTimeout(ctx, c.settings.RenderTimeout)
	defer cancel()

	bubble, err := c.builder.Build(renderCtx, text, o.Style())
	if err != nil {
		level := logger.Error
		if errors.Is(err, caption.ErrInvalidLayout) {
			level = logger.Warn
		}
		level("caption skipped", zap.Error(err))
		return nil, false
	}

	anchor := o.Anchor()
	if opts.Anchor != nil {
		anchor = *opts.Anchor
	}
	if !anchor.Valid() {
		anchor = layout.DefaultAnchor
	}
	frame := placement.Frame{
		Scaled:   res.Scaled,
		Viewport: res.Viewport,
		Bubble:   bubble.Size,
		Padding:  o.Padding(),
	}

	if o.AutoPosition {
		anchor = c.autoPosition(ctx, scaled, frame, anchor, res)
	}

	pos := layout.Place(res.Scaled, res.Viewport, bubble.Size, frame.Padding, anchor)
	res.Anchor = anchor
	res.Bubble = image.Rect(pos.X, pos.Y, pos.X+bubble.Size.Width, pos.Y+bubble.Size.Height)
	logger.Debug("caption placed",
		zap.Stringer("anchor", anchor),
		zap.Stringer("bubble", bubble.Size),
		zap.Int("x", pos.X),
		zap.Int("y", pos.Y))

	return c.processor.Overlay(scaled, bubble.Image, pos), true
}

// autoPosition asks the planner for the anchor covering the least of the
// picture's subjects, keeping preferred when detection fails
func (c *Captioner) autoPosition(ctx context.Context, scaled image.Image, frame placement.Frame, preferred layout.Anchor, res *Result) layout.Anchor {
	detectCtx, cancel := context.WithTimeout(ctx, c.settings.DetectTimeout)
	defer cancel()

	anchor, subjects, err := c.planner.Plan(detectCtx, scaled, frame, preferred)
	if err != nil {
		logger.Warn("subject detection failed, keeping configured anchor",
			zap.Stringer("anchor", preferred), zap.Error(err))
		return preferred
	}
	res.Subjects = subjects
	logger.Info("auto position",
		zap.Int("subjects", len(subjects)),
		zap.Stringer("preferred", preferred),
		zap.Stringer("chosen", anchor))
	return anchor
}

// output resolves the wallpaper path and encoding. An -out override with a
// known extension is encoded to match that extension.
func (c *Captioner) output(opts RunOptions) (string, string, error) {
	s := *c.settings
	if opts.Output != "" {
		s.OutputPath = utils.ExpandPath(opts.Output)
		if format, err := utils.NormalizeFormat(utils.GetFileExtension(s.OutputPath)); err == nil {
			s.OutputFormat = format
		}
	}
	format, err := s.Format()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", compose.ErrComposite, err)
	}
	return s.OutputPath, format, nil
}

func (c *Captioner) write(img image.Image, path, format string, res *Result) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %w", compose.ErrComposite, err)
	}
	err := c.processor.SaveImage(img, path, compose.OutputOptions{
		Format:   format,
		Quality:  c.settings.Quality,
		Lossless: c.settings.Lossless,
	})
	if err != nil {
		return err
	}

	res.OutputPath = path
	logger.Info("wallpaper written",
		zap.String("path", path),
		zap.String("format", format),
		zap.String("size", utils.FileSize(path)))
	return nil
}

// samePath reports whether two local paths name the same file
func samePath(a, b string) bool {
	if strings.Contains(a, "://") {
		return false
	}
	absA, errA := filepath.Abs(utils.ExpandPath(a))
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (c *Captioner) writeDebug(scaled image.Image, res *Result) {
	oh := layout.OverhangOf(res.Scaled, res.Viewport)
	x0, y0 := int(oh.X), int(oh.Y)
	visible := image.Rect(x0, y0, x0+res.Viewport.Width, y0+res.Viewport.Height)

	overlay := compose.DebugOverlay(scaled, res.Subjects, res.Bubble, visible)
	path := debugPath(res.OutputPath)
	if err := c.processor.SaveImage(overlay, path, compose.OutputOptions{Format: "png"}); err != nil {
		logger.Warn("debug overlay save failed", zap.Error(err))
		return
	}
	res.DebugPath = path
	logger.Info("debug overlay written", zap.String("path", path))
}

func (c *Captioner) persist(doc config.Document, path string) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		logger.Error("failed to save configuration", zap.String("path", path), zap.Error(err))
		return
	}
	if err := doc.Save(path); err != nil {
		logger.Error("failed to save configuration", zap.String("path", path), zap.Error(err))
	}
}

// debugPath derives the overlay file name from the output path
func debugPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".debug.png"
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
