// Package caption builds the caption bubble drawn over the wallpaper: the
// caption string, the wrapped text layer and the rounded backdrop behind it.
package caption

import "strings"

// MaxTextLength caps the caption in characters
const MaxTextLength = 1000

// separator goes between two contributing fields
const separator = "\n\n"

// Content holds the text fields of the daily image
type Content struct {
	Title       string
	Copyright   string
	Explanation string
}

// Visibility selects which content fields may appear in the caption
type Visibility struct {
	Title       bool
	Copyright   bool
	Explanation bool
}

// ShowAll enables every field
var ShowAll = Visibility{Title: true, Copyright: true, Explanation: true}

// SelectText joins the enabled, non-empty fields in title, copyright,
// explanation order with a blank line between them, truncated to MaxTextLength.
func SelectText(c Content, show Visibility) string {
	fields := [...]struct {
		text string
		on   bool
	}{
		{c.Title, show.Title},
		{c.Copyright, show.Copyright},
		{c.Explanation, show.Explanation},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.on && f.text != "" {
			parts = append(parts, f.text)
		}
	}
	return truncate(strings.Join(parts, separator), MaxTextLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
