package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/spaceoddity/pkg/types"
)

func TestCoverWideSource(t *testing.T) {
	res, err := Cover(types.Size{Width: 4000, Height: 2000}, types.Size{Width: 1920, Height: 1080})
	require.NoError(t, err)

	assert.InDelta(t, 2.083, res.ScaleW, 0.001)
	assert.InDelta(t, 1.852, res.ScaleH, 0.001)
	assert.InDelta(t, 1.852, res.Scale, 0.001)
	assert.Equal(t, types.Size{Width: 2160, Height: 1080}, res.Size)

	oh := OverhangOf(res.Size, types.Size{Width: 1920, Height: 1080})
	assert.Equal(t, Overhang{X: 120, Y: 0}, oh)
}

func TestCoverTallSource(t *testing.T) {
	res, err := Cover(types.Size{Width: 1000, Height: 3000}, types.Size{Width: 1920, Height: 1080})
	require.NoError(t, err)

	assert.Equal(t, 1920, res.Size.Width)
	assert.GreaterOrEqual(t, res.Size.Height, 1080)
	assert.Equal(t, 5760, res.Size.Height)
}

func TestCoverSameAspect(t *testing.T) {
	res, err := Cover(types.Size{Width: 3840, Height: 2160}, types.Size{Width: 1920, Height: 1080})
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: 1920, Height: 1080}, res.Size)
	assert.Equal(t, 2.0, res.Scale)
}

func TestCoverInvalidDimension(t *testing.T) {
	tests := []struct {
		name     string
		source   types.Size
		viewport types.Size
	}{
		{"zero source width", types.Size{Width: 0, Height: 100}, types.Size{Width: 100, Height: 100}},
		{"negative source height", types.Size{Width: 100, Height: -1}, types.Size{Width: 100, Height: 100}},
		{"zero viewport", types.Size{Width: 100, Height: 100}, types.Size{}},
		{"negative viewport width", types.Size{Width: 100, Height: 100}, types.Size{Width: -5, Height: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cover(tt.source, tt.viewport)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDimension))
		})
	}
}

// sizes exercised by the property tests below
var coverGrid = []int{1, 3, 7, 99, 640, 1023, 1080, 1366, 1920, 2560, 4001}

func TestCoverNeverSmallerThanViewport(t *testing.T) {
	for _, sw := range coverGrid {
		for _, sh := range coverGrid {
			for _, vw := range coverGrid {
				for _, vh := range coverGrid {
					src := types.Size{Width: sw, Height: sh}
					vp := types.Size{Width: vw, Height: vh}
					res, err := Cover(src, vp)
					require.NoError(t, err)
					if res.Size.Width < vw || res.Size.Height < vh {
						t.Fatalf("Cover(%s, %s) = %s, smaller than viewport", src, vp, res.Size)
					}
				}
			}
		}
	}
}

func TestCoverNearIdempotent(t *testing.T) {
	for _, sw := range coverGrid {
		for _, sh := range coverGrid {
			for _, vw := range coverGrid[3:] {
				for _, vh := range coverGrid[3:] {
					vp := types.Size{Width: vw, Height: vh}
					first, err := Cover(types.Size{Width: sw, Height: sh}, vp)
					require.NoError(t, err)
					second, err := Cover(first.Size, vp)
					require.NoError(t, err)

					dw := math.Abs(float64(second.Size.Width - first.Size.Width))
					dh := math.Abs(float64(second.Size.Height - first.Size.Height))
					if dw > 1 || dh > 1 {
						t.Fatalf("re-cover of %s against %s grew to %s", first.Size, vp, second.Size)
					}
				}
			}
		}
	}
}

func BenchmarkCover(b *testing.B) {
	src := types.Size{Width: 4000, Height: 2000}
	vp := types.Size{Width: 1920, Height: 1080}
	for i := 0; i < b.N; i++ {
		_, _ = Cover(src, vp)
	}
}
