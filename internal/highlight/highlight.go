// Package highlight locates answer snippets in a fragment and tracks the
// spoken word during audio playback.
package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Find returns the byte span of snippet in text, compared case-insensitively.
// When the snippet is not found as given, trailing punctuation is stripped
// and the search retried.
func Find(text, snippet string) (start, end int, ok bool) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return 0, 0, false
	}
	if s, e, ok := find(text, snippet); ok {
		return s, e, true
	}
	trimmed := strings.TrimRightFunc(snippet, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	if trimmed == "" || trimmed == snippet {
		return 0, 0, false
	}
	return find(text, trimmed)
}

// find searches rune by rune so that offsets stay valid when case folding
// changes byte lengths.
func find(text, snippet string) (int, int, bool) {
	folder := cases.Fold()
	needle := []rune(folder.String(snippet))
	for i := 0; i < len(text); {
		if end, ok := matchAt(folder, text, i, needle); ok {
			return i, end, true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return 0, 0, false
}

func matchAt(folder cases.Caser, text string, i int, needle []rune) (int, bool) {
	n := 0
	for n < len(needle) {
		if i >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		folded := []rune(folder.String(string(r)))
		if n+len(folded) > len(needle) {
			return 0, false
		}
		for _, f := range folded {
			if needle[n] != f {
				return 0, false
			}
			n++
		}
		i += size
	}
	return i, true
}

// Apply wraps the snippet's span in text with mark. Text is returned
// unchanged when the snippet cannot be found.
func Apply(text, snippet string, mark func(string) string) string {
	start, end, ok := Find(text, snippet)
	if !ok {
		return text
	}
	return text[:start] + mark(text[start:end]) + text[end:]
}
