package highlight

import (
	"unicode"
	"unicode/utf8"
)

// Span is a byte range [Start, End) in a text.
type Span struct {
	Start, End int
}

// WordSpans returns the whitespace-separated words of text as byte spans,
// in the same order strings.Fields would return them.
func WordSpans(text string) []Span {
	var out []Span
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, Span{start, i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		out = append(out, Span{start, len(text)})
	}
	return out
}

// MarkWord wraps the idx-th word of text with mark. Out-of-range indexes
// leave text unchanged.
func MarkWord(text string, idx int, mark func(string) string) string {
	if idx < 0 {
		return text
	}
	spans := WordSpans(text)
	if idx >= len(spans) {
		return text
	}
	sp := spans[idx]
	return text[:sp.Start] + mark(text[sp.Start:sp.End]) + text[sp.End:]
}
