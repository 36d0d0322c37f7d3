package splitter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a half-open byte range into the text being split.
type span struct {
	start, end int
}

// unit is the smallest piece the packer moves around. paragraph marks the
// first unit of every paragraph after the first.
type unit struct {
	span
	paragraph bool
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

// paragraphs returns the trimmed spans between blank lines.
func paragraphs(t string) []span {
	var out []span
	prev := 0
	for _, m := range blankLine.FindAllStringIndex(t, -1) {
		out = appendTrimmed(out, t, prev, m[0])
		prev = m[1]
	}
	return appendTrimmed(out, t, prev, len(t))
}

// sentences splits t[start:end] after terminal punctuation that is followed
// by whitespace, and at single line breaks so dialogue lines stay whole.
func sentences(t string, start, end int) []span {
	var out []span
	s := start
	i := start
	for i < end {
		r, size := utf8.DecodeRuneInString(t[i:end])
		i += size
		if r == '\n' {
			out = appendTrimmed(out, t, s, i)
			s = i
			continue
		}
		if !isTerminal(r) {
			continue
		}
		for i < end {
			r2, sz := utf8.DecodeRuneInString(t[i:end])
			if !isTerminal(r2) && !isCloser(r2) {
				break
			}
			i += sz
		}
		if i >= end {
			break
		}
		if r2, _ := utf8.DecodeRuneInString(t[i:end]); unicode.IsSpace(r2) {
			out = appendTrimmed(out, t, s, i)
			s = i
		}
	}
	return appendTrimmed(out, t, s, end)
}

// words returns the span of every whitespace-separated word in t[start:end].
func words(t string, start, end int) []span {
	var out []span
	inWord := false
	ws := 0
	for i, r := range t[start:end] {
		i += start
		if unicode.IsSpace(r) {
			if inWord {
				out = append(out, span{ws, i})
				inWord = false
			}
			continue
		}
		if !inWord {
			ws = i
			inWord = true
		}
	}
	if inWord {
		out = append(out, span{ws, end})
	}
	return out
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '»', ')', ']':
		return true
	}
	return false
}

func appendTrimmed(out []span, t string, start, end int) []span {
	seg := t[start:end]
	trimmedLeft := strings.TrimLeftFunc(seg, unicode.IsSpace)
	start += len(seg) - len(trimmedLeft)
	end = start + len(strings.TrimRightFunc(trimmedLeft, unicode.IsSpace))
	if start >= end {
		return out
	}
	return append(out, span{start, end})
}
