package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/menta2k/spaceoddity/internal/utils"
)

// ErrConfig marks a persisted store that was missing or unreadable.
// It is never fatal: Load still returns a usable document.
var ErrConfig = errors.New("config error")

// Section names of the persisted document
const (
	SectionGeneral = "general"
	SectionOptions = "options"
	SectionApod    = "apod"
	SectionCaption = "caption"
	SectionFiles   = "files"
)

// Section maps keys to JSON values
type Section map[string]any

// Document is the persisted two-level store: section -> key -> value
type Document map[string]Section

// Defaults returns a fresh copy of the canonical configuration
func Defaults() Document {
	return Document{
		SectionGeneral: {
			"enabled": true,
		},
		SectionOptions: {
			"width":            500,
			"corner_radius":    15,
			"border_padding":   20,
			"top_padding":      50,
			"bottom_padding":   10,
			"side_padding":     10,
			"position":         8,
			"font_size":        15,
			"bg_r":             0.0,
			"bg_g":             0.0,
			"bg_b":             0.0,
			"bg_a":             75,
			"fg_r":             1.0,
			"fg_g":             1.0,
			"fg_b":             1.0,
			"show_caption":     true,
			"show_title":       true,
			"show_copyright":   true,
			"show_explanation": true,
			"auto_position":    false,
		},
		SectionApod: {
			"title":       "",
			"copyright":   "",
			"explanation": "",
		},
		SectionCaption: {
			"pic_w":    0,
			"pic_h":    0,
			"screen_w": 0,
			"screen_h": 0,
		},
		SectionFiles: {
			"source":       "",
			"filepath":     "",
			"old_filepath": "",
		},
	}
}

// ApplyDefaults fills doc from defaults, two levels deep. Missing sections are
// copied whole; present sections only gain their missing keys. Existing keys,
// unknown keys and value types are left alone.
func ApplyDefaults(doc, defaults Document) Document {
	if doc == nil {
		return defaults.Clone()
	}
	for name, defSection := range defaults {
		section, ok := doc[name]
		if !ok || section == nil {
			doc[name] = defSection.Clone()
			continue
		}
		for key, value := range defSection {
			if _, ok := section[key]; !ok {
				section[key] = cloneValue(value)
			}
		}
	}
	return doc
}

// Load reads the document at path and fills it from Defaults. When the file
// is missing or cannot be parsed the defaults are returned together with an
// error wrapping ErrConfig.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("%w: failed to read config file: %w", ErrConfig, err)
	}
	return Parse(data)
}

// Parse decodes a JSON document and fills it from Defaults
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Defaults(), fmt.Errorf("%w: failed to parse config file: %w", ErrConfig, err)
	}
	return ApplyDefaults(doc, Defaults()), nil
}

// Save writes the document as indented JSON, replacing path atomically
func (d Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = utils.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Set stores value under section/key, creating the section if needed
func (d Document) Set(section, key string, value any) {
	s, ok := d[section]
	if !ok || s == nil {
		s = Section{}
		d[section] = s
	}
	s[key] = value
}

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for name, section := range d {
		out[name] = section.Clone()
	}
	return out
}

// Clone returns a deep copy of the section
func (s Section) Clone() Section {
	if s == nil {
		return nil
	}
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// DefaultPath returns the default location of the persisted store
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "spaceoddity", "spaceoddity.cfg")
}
