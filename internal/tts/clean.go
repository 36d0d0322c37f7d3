package tts

import (
	"regexp"
	"strings"
)

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reUnderBold  = regexp.MustCompile(`__(.+?)__`)
	reUnderscore = regexp.MustCompile(`_(.+?)_`)
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

var punctuationReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‚", `"`,
	"‘", "'", "’", "'",
	"—", "-", "–", "-",
	"…", "...",
)

// Abbreviations are expanded only at a word start. Longer forms come first
// so "и т.д." wins over "т.д.".
var abbreviations = []struct {
	abbr, full string
}{
	{"Dr.", "Doctor"},
	{"Mrs.", "Missus"},
	{"Mr.", "Mister"},
	{"Ms.", "Miss"},
	{"etc.", "etcetera"},
	{"i.e.", "that is"},
	{"e.g.", "for example"},
	{"и т.д.", "и так далее"},
	{"т.д.", "так далее"},
	{"т.е.", "то есть"},
	{"т.к.", "так как"},
	{"т.п.", "тому подобное"},
}

// CleanText prepares text for a speech engine: markdown emphasis and HTML
// tags are stripped, typographic quotes and dashes are flattened, common
// abbreviations are spelled out and whitespace is collapsed. The result
// always ends in terminal punctuation.
func CleanText(text string) string {
	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reUnderBold.ReplaceAllString(text, "$1")
	text = reUnderscore.ReplaceAllString(text, "$1")
	text = reHTMLTag.ReplaceAllString(text, "")
	text = punctuationReplacer.Replace(text)
	for _, a := range abbreviations {
		text = expandAtWordStart(text, a.abbr, a.full)
	}
	text = strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))

	if text != "" && !strings.ContainsAny(text[len(text)-1:], ".!?") {
		text += "."
	}
	return text
}

func expandAtWordStart(text, abbr, full string) string {
	var b strings.Builder
	for {
		i := strings.Index(text, abbr)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		if i == 0 || !isWordRune(lastRune(text[:i])) {
			b.WriteString(text[:i])
			b.WriteString(full)
		} else {
			b.WriteString(text[:i+len(abbr)])
		}
		text = text[i+len(abbr):]
	}
}
