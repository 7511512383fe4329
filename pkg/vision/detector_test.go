package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// createTestImage creates a dark image with a checkered subject in the given rectangle
func createTestImage(width, height int, subject image.Rectangle) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if image.Pt(x, y).In(subject) && (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{10, 10, 20, 255})
			}
		}
	}

	return img
}

func TestNew(t *testing.T) {
	detector := New()
	if detector == nil {
		t.Fatal("New() returned nil")
	}

	if detector.config.EdgeThreshold != 0.01 {
		t.Errorf("Expected edge threshold 0.01, got %f", detector.config.EdgeThreshold)
	}
	if detector.config.MaxRegions != 10 {
		t.Errorf("Expected 10 max regions, got %d", detector.config.MaxRegions)
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := DetectionConfig{
		EdgeThreshold:   0.2,
		ContrastWeight:  0.4,
		ColorWeight:     0.3,
		MinSubjectRatio: 0.2,
	}

	detector := NewWithConfig(cfg)
	if detector.config.EdgeThreshold != 0.2 {
		t.Errorf("Expected edge threshold 0.2, got %f", detector.config.EdgeThreshold)
	}
	if detector.config.MaxRegions != 10 {
		t.Errorf("Expected MaxRegions to default to 10, got %d", detector.config.MaxRegions)
	}
}

func TestDetectSubjectsFindsSubject(t *testing.T) {
	subject := image.Rect(40, 60, 120, 140)
	img := createTestImage(320, 200, subject)

	regions := New().DetectSubjects(img)
	if len(regions) == 0 {
		t.Fatal("Expected to detect at least one region")
	}

	subj := types.Region{X: subject.Min.X, Y: subject.Min.Y, Width: subject.Dx(), Height: subject.Dy()}
	best := regions[0]
	if best.Overlap(subj) == 0 {
		t.Errorf("Best region %+v does not overlap the subject %+v", best, subj)
	}

	for i := 1; i < len(regions); i++ {
		if regions[i].Score > regions[i-1].Score {
			t.Errorf("Regions not sorted by score at %d", i)
		}
	}
}

func TestDetectSubjectsFlatImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))

	regions := New().DetectSubjects(img)
	if len(regions) != 0 {
		t.Errorf("Expected no regions on a black image, got %d", len(regions))
	}
}

func TestDetectSubjectsTinyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if regions := New().DetectSubjects(img); regions != nil {
		t.Errorf("Expected nil for tiny image, got %v", regions)
	}
}

func TestDetectSubjectsLimit(t *testing.T) {
	img := createTestImage(320, 200, image.Rect(0, 0, 320, 200))
	detector := NewWithConfig(DetectionConfig{EdgeThreshold: 0.001, ContrastWeight: 0.3, ColorWeight: 0.2, MaxRegions: 3})

	if regions := detector.DetectSubjects(img); len(regions) != 3 {
		t.Errorf("Expected 3 regions, got %d", len(regions))
	}
}

func TestLocateHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Locate(ctx, createTestImage(50, 50, image.Rect(10, 10, 40, 40))); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestSummedAreaMean(t *testing.T) {
	// 2x2 image of ones
	sa := &summedArea{w: 2, h: 2, sum: []float64{
		0, 0, 0,
		0, 1, 2,
		0, 2, 4,
	}}
	if got := sa.mean(0, 0, 2, 2); got != 1 {
		t.Errorf("Expected mean 1, got %f", got)
	}
	if got := sa.mean(1, 1, 1, 1); got != 1 {
		t.Errorf("Expected mean 1, got %f", got)
	}
}

func BenchmarkDetectSubjects(b *testing.B) {
	img := createTestImage(512, 288, image.Rect(100, 50, 300, 200))
	detector := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		detector.DetectSubjects(img)
	}
}
