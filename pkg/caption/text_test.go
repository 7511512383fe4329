package caption

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSelectText(t *testing.T) {
	content := Content{Title: "Title", Copyright: "Copyright", Explanation: "Explanation"}

	tests := []struct {
		name    string
		content Content
		show    Visibility
		want    string
	}{
		{"all shown", content, ShowAll, "Title\n\nCopyright\n\nExplanation"},
		{"none shown", content, Visibility{}, ""},
		{"title only", content, Visibility{Title: true}, "Title"},
		{"copyright only", content, Visibility{Copyright: true}, "Copyright"},
		{"explanation only", content, Visibility{Explanation: true}, "Explanation"},
		{"title and explanation", content, Visibility{Title: true, Explanation: true}, "Title\n\nExplanation"},
		{"copyright and explanation", content, Visibility{Copyright: true, Explanation: true}, "Copyright\n\nExplanation"},
		{"title and copyright", content, Visibility{Title: true, Copyright: true}, "Title\n\nCopyright"},
		{"empty middle field contributes no separator", Content{Title: "T", Explanation: "E"}, ShowAll, "T\n\nE"},
		{"all empty", Content{}, ShowAll, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectText(tt.content, tt.show))
		})
	}
}

func TestSelectTextTruncates(t *testing.T) {
	long := strings.Repeat("x", 1500)
	got := SelectText(Content{Title: "Title", Explanation: long}, ShowAll)

	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "Title\n\nxxx"))
}

func TestSelectTextTruncatesCharacters(t *testing.T) {
	long := strings.Repeat("é", 1200)
	got := SelectText(Content{Explanation: long}, ShowAll)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(got))
}

func TestSelectTextLengthBound(t *testing.T) {
	fields := []string{"", "a", strings.Repeat("b", 400), strings.Repeat("c", 999), strings.Repeat("d", 1001)}
	for _, title := range fields {
		for _, cr := range fields {
			for _, ex := range fields {
				got := SelectText(Content{Title: title, Copyright: cr, Explanation: ex}, ShowAll)
				if n := utf8.RuneCountInString(got); n > MaxTextLength {
					t.Fatalf("caption length %d exceeds %d", n, MaxTextLength)
				}
			}
		}
	}
}

func TestSelectTextOrder(t *testing.T) {
	got := SelectText(Content{Title: "1", Copyright: "2", Explanation: "3"}, ShowAll)
	assert.Less(t, strings.Index(got, "1"), strings.Index(got, "2"))
	assert.Less(t, strings.Index(got, "2"), strings.Index(got, "3"))
}
