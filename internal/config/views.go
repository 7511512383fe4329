package config

import (
	"encoding/json"
	"fmt"

	"github.com/menta2k/spaceoddity/pkg/caption"
	"github.com/menta2k/spaceoddity/pkg/layout"
	"github.com/menta2k/spaceoddity/pkg/types"
)

// General holds the general section
type General struct {
	Enabled bool `json:"enabled"`
}

// Options holds the caption style and placement settings
type Options struct {
	Width           int     `json:"width"`
	CornerRadius    int     `json:"corner_radius"`
	BorderPadding   int     `json:"border_padding"`
	TopPadding      int     `json:"top_padding"`
	BottomPadding   int     `json:"bottom_padding"`
	SidePadding     int     `json:"side_padding"`
	Position        int     `json:"position"`
	FontSize        float64 `json:"font_size"`
	BgR             float64 `json:"bg_r"`
	BgG             float64 `json:"bg_g"`
	BgB             float64 `json:"bg_b"`
	BgA             float64 `json:"bg_a"` // percent
	FgR             float64 `json:"fg_r"`
	FgG             float64 `json:"fg_g"`
	FgB             float64 `json:"fg_b"`
	ShowCaption     bool    `json:"show_caption"`
	ShowTitle       bool    `json:"show_title"`
	ShowCopyright   bool    `json:"show_copyright"`
	ShowExplanation bool    `json:"show_explanation"`
	AutoPosition    bool    `json:"auto_position"`
}

// Apod holds the text of the current daily image
type Apod struct {
	Title       string `json:"title"`
	Copyright   string `json:"copyright"`
	Explanation string `json:"explanation"`
}

// Geometry records the sizes used by the last run
type Geometry struct {
	PicW    int `json:"pic_w"`
	PicH    int `json:"pic_h"`
	ScreenW int `json:"screen_w"`
	ScreenH int `json:"screen_h"`
}

// Files records the source picture and the current and previous wallpaper paths
type Files struct {
	Source      string `json:"source"` // picture captioned when no input is given
	Filepath    string `json:"filepath"`
	OldFilepath string `json:"old_filepath"`
}

// View is the typed, read-only form of a Document used during a run
type View struct {
	General  General
	Options  Options
	Apod     Apod
	Geometry Geometry
	Files    Files
}

// View decodes every section. A section that does not decode, or options
// that fail validation, fall back to the defaults for that section; the
// returned errors describe each fallback. The document itself is not modified.
func (d Document) View() (View, []error) {
	var v View
	var problems []error
	defaults := Defaults()

	decode := func(name string, dst any) {
		if err := decodeSection(d[name], dst); err != nil {
			problems = append(problems, fmt.Errorf("%w: section %q: %w", ErrConfig, name, err))
			if err := decodeSection(defaults[name], dst); err != nil {
				panic(fmt.Sprintf("config: default section %q does not decode: %v", name, err))
			}
		}
	}

	decode(SectionGeneral, &v.General)
	decode(SectionOptions, &v.Options)
	decode(SectionApod, &v.Apod)
	decode(SectionCaption, &v.Geometry)
	decode(SectionFiles, &v.Files)

	if err := v.Options.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("%w: %w", ErrConfig, err))
		v.Options = Options{}
		_ = decodeSection(defaults[SectionOptions], &v.Options)
	}

	return v, problems
}

func decodeSection(s Section, dst any) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Validate checks that every numeric option is non-negative
func (o Options) Validate() error {
	ints := map[string]int{
		"width":          o.Width,
		"corner_radius":  o.CornerRadius,
		"border_padding": o.BorderPadding,
		"top_padding":    o.TopPadding,
		"bottom_padding": o.BottomPadding,
		"side_padding":   o.SidePadding,
		"position":       o.Position,
	}
	for name, v := range ints {
		if v < 0 {
			return fmt.Errorf("options.%s must not be negative", name)
		}
	}

	floats := map[string]float64{
		"font_size": o.FontSize,
		"bg_r":      o.BgR, "bg_g": o.BgG, "bg_b": o.BgB, "bg_a": o.BgA,
		"fg_r": o.FgR, "fg_g": o.FgG, "fg_b": o.FgB,
	}
	for name, v := range floats {
		if v < 0 {
			return fmt.Errorf("options.%s must not be negative", name)
		}
	}
	return nil
}

// Style converts the options into a caption style
func (o Options) Style() caption.Style {
	return caption.Style{
		Width:         o.Width,
		CornerRadius:  o.CornerRadius,
		BorderPadding: o.BorderPadding,
		FontSize:      o.FontSize,
		Foreground:    caption.UnitColor(o.FgR, o.FgG, o.FgB, 1),
		Background:    caption.UnitColor(o.BgR, o.BgG, o.BgB, caption.PercentOpacity(o.BgA)),
	}
}

// Padding returns the bubble offsets from the viewport edges
func (o Options) Padding() layout.Padding {
	return layout.Padding{Side: o.SidePadding, Top: o.TopPadding, Bottom: o.BottomPadding}
}

// Anchor returns the configured anchor
func (o Options) Anchor() layout.Anchor {
	return layout.AnchorFromInt(o.Position)
}

// Visibility returns which content fields may appear in the caption
func (o Options) Visibility() caption.Visibility {
	return caption.Visibility{
		Title:       o.ShowTitle,
		Copyright:   o.ShowCopyright,
		Explanation: o.ShowExplanation,
	}
}

// Content returns the caption content fields
func (a Apod) Content() caption.Content {
	return caption.Content{Title: a.Title, Copyright: a.Copyright, Explanation: a.Explanation}
}

// Screen returns the stored viewport size
func (g Geometry) Screen() types.Size {
	return types.Size{Width: g.ScreenW, Height: g.ScreenH}
}

// SetGeometry writes the run's sizes into the caption section
func (d Document) SetGeometry(pic, screen types.Size) {
	d.Set(SectionCaption, "pic_w", pic.Width)
	d.Set(SectionCaption, "pic_h", pic.Height)
	d.Set(SectionCaption, "screen_w", screen.Width)
	d.Set(SectionCaption, "screen_h", screen.Height)
}

// SetSource records the picture later runs caption when no input is given
func (d Document) SetSource(path string) {
	d.Set(SectionFiles, "source", path)
}

// RotateFile records path as the current wallpaper and keeps the previous one
func (d Document) RotateFile(path string) {
	prev, _ := d[SectionFiles]["filepath"].(string)
	if prev == path {
		return
	}
	d.Set(SectionFiles, "old_filepath", prev)
	d.Set(SectionFiles, "filepath", path)
}
