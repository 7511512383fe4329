package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/spaceoddity/pkg/layout"
	"github.com/menta2k/spaceoddity/pkg/types"
)

func TestDefaultsAreFreshCopies(t *testing.T) {
	a := Defaults()
	a[SectionOptions]["width"] = 1

	b := Defaults()
	assert.Equal(t, 500, b[SectionOptions]["width"])
}

func TestApplyDefaultsMissingSection(t *testing.T) {
	doc := Document{
		SectionOptions: {"width": 640},
	}

	out := ApplyDefaults(doc, Defaults())

	assert.Equal(t, Defaults()[SectionApod], out[SectionApod])
	assert.Equal(t, Defaults()[SectionCaption], out[SectionCaption])
	assert.Equal(t, Defaults()[SectionGeneral], out[SectionGeneral])
}

func TestApplyDefaultsMissingKey(t *testing.T) {
	options := Defaults()[SectionOptions].Clone()
	delete(options, "corner_radius")
	options["width"] = 640.0
	options["font_size"] = 22.0

	doc := Document{SectionOptions: options}
	out := ApplyDefaults(doc, Defaults())

	assert.Equal(t, 15, out[SectionOptions]["corner_radius"])
	assert.Equal(t, 640.0, out[SectionOptions]["width"])
	assert.Equal(t, 22.0, out[SectionOptions]["font_size"])
	assert.Len(t, out[SectionOptions], len(Defaults()[SectionOptions]))
}

func TestApplyDefaultsKeepsUnknownAndMistypedKeys(t *testing.T) {
	doc := Document{
		SectionOptions: {"width": "wide", "legacy_font": "Sans 15"},
		"extra":        {"k": "v"},
	}

	out := ApplyDefaults(doc, Defaults())

	assert.Equal(t, "wide", out[SectionOptions]["width"])
	assert.Equal(t, "Sans 15", out[SectionOptions]["legacy_font"])
	assert.Equal(t, Section{"k": "v"}, out["extra"])
}

func TestApplyDefaultsOnlyTwoLevels(t *testing.T) {
	defaults := Document{"s": {"nested": map[string]any{"a": 1, "b": 2}}}
	doc := Document{"s": {"nested": map[string]any{"a": 5}}}

	out := ApplyDefaults(doc, defaults)

	assert.Equal(t, map[string]any{"a": 5}, out["s"]["nested"])
}

func TestApplyDefaultsDoesNotAliasDefaults(t *testing.T) {
	defaults := Defaults()
	out := ApplyDefaults(Document{}, defaults)
	out[SectionApod]["title"] = "changed"

	assert.Equal(t, "", defaults[SectionApod]["title"])
}

func TestApplyDefaultsNil(t *testing.T) {
	out := ApplyDefaults(nil, Defaults())
	assert.Equal(t, Defaults(), out)
}

func TestParseCorruptUsesDefaults(t *testing.T) {
	doc, err := Parse([]byte("{not json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, Defaults(), doc)
}

func TestParseWrongShapeUsesDefaults(t *testing.T) {
	doc, err := Parse([]byte(`{"options": 5}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, Defaults(), doc)
}

func TestLoadMissingFile(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "missing.cfg"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, Defaults(), doc)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spaceoddity", "spaceoddity.cfg")

	doc := Defaults()
	doc.Set(SectionApod, "title", "The Horsehead Nebula")
	doc.SetGeometry(types.Size{Width: 2160, Height: 1080}, types.Size{Width: 1920, Height: 1080})
	require.NoError(t, doc.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "The Horsehead Nebula", loaded[SectionApod]["title"])
	// JSON numbers come back as float64
	assert.Equal(t, 2160.0, loaded[SectionCaption]["pic_w"])
	assert.Equal(t, 1920.0, loaded[SectionCaption]["screen_w"])
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spaceoddity.cfg")
	content := `{"options": {"width": 800, "position": 4}, "apod": {"title": "M31"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)

	view, problems := doc.View()
	assert.Empty(t, problems)
	assert.Equal(t, 800, view.Options.Width)
	assert.Equal(t, layout.Center, view.Options.Anchor())
	assert.Equal(t, 20, view.Options.BorderPadding)
	assert.Equal(t, "M31", view.Apod.Title)
	assert.True(t, view.General.Enabled)
}

func TestRotateFile(t *testing.T) {
	doc := Defaults()
	doc.RotateFile("/pics/a.jpg")
	doc.RotateFile("/pics/b.jpg")

	assert.Equal(t, "/pics/b.jpg", doc[SectionFiles]["filepath"])
	assert.Equal(t, "/pics/a.jpg", doc[SectionFiles]["old_filepath"])

	doc.RotateFile("/pics/b.jpg")
	assert.Equal(t, "/pics/a.jpg", doc[SectionFiles]["old_filepath"])
}

func TestSetSourceIsSeparateFromOutput(t *testing.T) {
	doc := Defaults()
	doc.SetSource("/apod/today.jpg")
	doc.RotateFile("/wall/wallpaper.jpg")

	view, problems := doc.View()
	assert.Empty(t, problems)
	assert.Equal(t, "/apod/today.jpg", view.Files.Source)
	assert.Equal(t, "/wall/wallpaper.jpg", view.Files.Filepath)
}
