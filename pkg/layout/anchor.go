package layout

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/menta2k/spaceoddity/pkg/types"
)

// Anchor selects where the caption bubble sits on the visible part of the image
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

// DefaultAnchor is used for values outside the known range
const DefaultAnchor = BottomRight

// Anchors lists all anchors in their numeric order
func Anchors() []Anchor {
	return []Anchor{TopLeft, TopCenter, TopRight, CenterLeft, Center, CenterRight, BottomLeft, BottomCenter, BottomRight}
}

var anchorNames = [...]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	CenterLeft:   "center-left",
	Center:       "center",
	CenterRight:  "center-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

// Valid reports whether a is one of the nine anchors
func (a Anchor) Valid() bool {
	return a >= TopLeft && a <= BottomRight
}

func (a Anchor) String() string {
	if !a.Valid() {
		return fmt.Sprintf("anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// AnchorFromInt converts a stored position value, falling back to DefaultAnchor
func AnchorFromInt(v int) Anchor {
	a := Anchor(v)
	if !a.Valid() {
		return DefaultAnchor
	}
	return a
}

// ParseAnchor accepts either a numeric position or an anchor name
func ParseAnchor(s string) (Anchor, error) {
	for i, name := range anchorNames {
		if name == s {
			return Anchor(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Anchor(n).Valid() {
		return Anchor(n), nil
	}
	return DefaultAnchor, fmt.Errorf("unknown anchor %q", s)
}

// Padding holds the bubble offsets from the viewport edges
type Padding struct {
	Side   int
	Top    int
	Bottom int
}

// frame carries every term the placement formulas use, in float64
type frame struct {
	W, H   float64 // scaled image
	vw, vh float64 // viewport
	bw, bh float64 // bubble
	ox, oy float64 // overhang
	side   float64
	top    float64
	bottom float64
}

func (f frame) left() float64    { return f.ox + f.side }
func (f frame) hcenter() float64 { return f.ox + f.vw/2 - f.bw/2 }
func (f frame) right() float64   { return f.W - f.ox - f.bw - f.side }
func (f frame) upper() float64   { return f.oy + f.top }
func (f frame) vcenter() float64 { return f.oy + f.vh/2 - f.bh/2 }
func (f frame) lower() float64   { return f.H - f.oy - f.bh - f.bottom }

type anchorRule struct {
	x func(frame) float64
	y func(frame) float64
}

// anchorTable is the single dispatch table for bubble placement.
// center-right and bottom-center mirror their corner siblings on the free axis.
var anchorTable = [...]anchorRule{
	TopLeft:      {frame.left, frame.upper},
	TopCenter:    {frame.hcenter, frame.upper},
	TopRight:     {frame.right, frame.upper},
	CenterLeft:   {frame.left, frame.vcenter},
	Center:       {frame.hcenter, frame.vcenter},
	CenterRight:  {frame.right, frame.vcenter},
	BottomLeft:   {frame.left, frame.lower},
	BottomCenter: {frame.hcenter, frame.lower},
	BottomRight:  {frame.right, frame.lower},
}

// Place returns the top-left corner of the bubble in scaled image coordinates.
// Both coordinates are rounded once, after the whole formula is evaluated.
// A bubble larger than the viewport yields coordinates outside the image;
// callers clip when compositing.
func Place(scaled, viewport, bubble types.Size, pad Padding, anchor Anchor) image.Point {
	if !anchor.Valid() {
		anchor = DefaultAnchor
	}
	oh := OverhangOf(scaled, viewport)
	f := frame{
		W: float64(scaled.Width), H: float64(scaled.Height),
		vw: float64(viewport.Width), vh: float64(viewport.Height),
		bw: float64(bubble.Width), bh: float64(bubble.Height),
		ox: oh.X, oy: oh.Y,
		side:   float64(pad.Side),
		top:    float64(pad.Top),
		bottom: float64(pad.Bottom),
	}
	rule := anchorTable[anchor]
	return image.Point{
		X: int(math.Round(rule.x(f))),
		Y: int(math.Round(rule.y(f))),
	}
}

// Rect returns the rectangle the bubble occupies when placed at anchor
func Rect(scaled, viewport, bubble types.Size, pad Padding, anchor Anchor) image.Rectangle {
	p := Place(scaled, viewport, bubble, pad, anchor)
	return image.Rect(p.X, p.Y, p.X+bubble.Width, p.Y+bubble.Height)
}
