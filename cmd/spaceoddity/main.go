package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/menta2k/spaceoddity"
	"github.com/menta2k/spaceoddity/internal/logger"
	"github.com/menta2k/spaceoddity/internal/settings"
	"github.com/menta2k/spaceoddity/pkg/layout"
	"github.com/menta2k/spaceoddity/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	var in, out, screen, configPath, settingsPath, anchor string
	var debug, debugOverlay, version bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp); defaults to files.source")
	flag.StringVar(&out, "out", "", "output wallpaper path (overrides output_path)")
	flag.StringVar(&screen, "screen", "", "screen size WxH (overrides the stored geometry)")
	flag.StringVar(&configPath, "config", "", "persisted configuration file")
	flag.StringVar(&settingsPath, "settings", "", "settings TOML file (defaults to the XDG config locations)")
	flag.StringVar(&anchor, "anchor", "", "caption anchor 0-8 or name, e.g. bottom-right")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.BoolVar(&debugOverlay, "overlay", false, "also write a debug overlay next to the output")
	flag.BoolVar(&version, "version", false, "print version and exit")
	flag.Parse()

	if version {
		fmt.Println(spaceoddity.GetVersion())
		return 0
	}

	var paths []string
	if settingsPath != "" {
		paths = []string{settingsPath}
	}
	s, err := settings.Load(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		return 1
	}

	if err := logger.Init(logger.Options{Path: s.LogPath, Debug: debug || s.Debug}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	opts := spaceoddity.RunOptions{
		Input:        in,
		Output:       out,
		ConfigPath:   configPath,
		DebugOverlay: debugOverlay,
	}
	if screen != "" {
		size, err := parseSize(screen)
		if err != nil {
			logger.Error("invalid -screen", zap.Error(err))
			return 1
		}
		opts.Screen = size
	}
	if anchor != "" {
		a, err := layout.ParseAnchor(anchor)
		if err != nil {
			logger.Error("invalid -anchor", zap.Error(err))
			return 1
		}
		opts.Anchor = &a
	}

	captioner, err := spaceoddity.New(s)
	if err != nil {
		logger.Error("failed to initialise", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := captioner.Run(ctx, opts)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return 1
	}
	if res.Disabled {
		return 0
	}

	logger.Info("done",
		zap.String("output", res.OutputPath),
		zap.Bool("captioned", res.Captioned),
		zap.Stringer("anchor", res.Anchor))
	return 0
}

// parseSize parses WxH
func parseSize(s string) (types.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return types.Size{}, fmt.Errorf("expected WxH, got %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return types.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return types.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	size := types.Size{Width: width, Height: height}
	if !size.Positive() {
		return types.Size{}, fmt.Errorf("screen size must be positive, got %s", size)
	}
	return size, nil
}
