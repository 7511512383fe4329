package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/spaceoddity/internal/utils"
	"github.com/menta2k/spaceoddity/pkg/types"
)

// ErrComposite wraps every failure of the imaging pipeline
var ErrComposite = errors.New("composite failed")

// OutputOptions controls how the final wallpaper is encoded
type OutputOptions struct {
	Format   string // jpg, png or webp
	Quality  int
	Lossless bool
}

// Processor handles image loading, resizing, overlay and saving
type Processor struct {
	resampler Resampler
	client    *http.Client
}

// NewProcessor creates a processor using the given resampler
func NewProcessor(resampler Resampler) *Processor {
	if resampler == nil {
		resampler = LanczosResampler{}
	}
	return &Processor{
		resampler: resampler,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// LoadImageSmart loads an image from either a file path or an http(s) URL
func (p *Processor) LoadImageSmart(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(ctx, source)
	}
	return p.LoadImage(source)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image: %w", ErrComposite, err)
	}
	img, err := decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrComposite, path, err)
	}
	return img, nil
}

// LoadImageFromURL downloads and decodes an image
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %w", ErrComposite, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported URL scheme: %s", ErrComposite, parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrComposite, err)
	}
	req.Header.Set("User-Agent", "spaceoddity/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %w", ErrComposite, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: HTTP %d", ErrComposite, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: URL does not point to an image (Content-Type: %s)", ErrComposite, ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %w", ErrComposite, err)
	}
	img, err := decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComposite, err)
	}
	return img, nil
}

// decodeImageFromBytes tries the registered decoders, then chai2010/webp
func decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// Size reports the dimensions of img
func Size(img image.Image) types.Size {
	b := img.Bounds()
	return types.Size{Width: b.Dx(), Height: b.Dy()}
}

// Resize scales img to exactly size
func (p *Processor) Resize(img image.Image, size types.Size) (image.Image, error) {
	if !size.Positive() {
		return nil, fmt.Errorf("%w: invalid target size %s", ErrComposite, size)
	}
	if Size(img) == size {
		return img, nil
	}
	out := p.resampler.Resize(img, size.Width, size.Height)
	if got := Size(out); got != size {
		return nil, fmt.Errorf("%w: resampler produced %s, want %s", ErrComposite, got, size)
	}
	return out, nil
}

// Overlay draws fg over bg with its top-left corner at pos. Parts of fg
// outside bg are clipped.
func (p *Processor) Overlay(bg, fg image.Image, pos image.Point) *image.NRGBA {
	return imaging.Overlay(bg, fg, pos, 1.0)
}

// Encode writes img in the requested format
func (p *Processor) Encode(w io.Writer, img image.Image, opts OutputOptions) error {
	format, err := utils.NormalizeFormat(opts.Format)
	if err != nil {
		return err
	}
	switch format {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality)})
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	}
}

// SaveImage encodes img to a temporary file and renames it over path, so a
// failure never leaves a partially written wallpaper behind.
func (p *Processor) SaveImage(img image.Image, path string, opts OutputOptions) error {
	err := utils.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return p.Encode(w, img, opts)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save %s: %w", ErrComposite, path, err)
	}
	return nil
}
