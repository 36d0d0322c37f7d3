package tts

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/lasi/internal/lang"
)

// WordTiming is the playback interval of one whitespace-separated word,
// in seconds from the start of the clip.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Timing modes.
const (
	TimingsProvider = "provider"
	TimingsEstimate = "estimate"
	TimingsOff      = "off"
)

// charsPerSecond is the speaking speed used for estimates.
var charsPerSecond = map[lang.Language]float64{
	lang.English: 13,
	lang.Latvian: 12,
	lang.Spanish: 13,
	lang.Russian: 11,
}

type pauseSet struct {
	sentence, comma, clause float64
}

var pauses = map[lang.Language]pauseSet{
	lang.English: {sentence: 0.4, comma: 0.2, clause: 0.3},
	lang.Latvian: {sentence: 0.45, comma: 0.2, clause: 0.3},
	lang.Spanish: {sentence: 0.35, comma: 0.18, clause: 0.25},
	lang.Russian: {sentence: 0.5, comma: 0.25, clause: 0.35},
}

func (p pauseSet) after(word string) float64 {
	switch {
	case strings.HasSuffix(word, "."), strings.HasSuffix(word, "!"), strings.HasSuffix(word, "?"):
		return p.sentence
	case strings.HasSuffix(word, ","):
		return p.comma
	case strings.HasSuffix(word, ";"), strings.HasSuffix(word, ":"):
		return p.clause
	}
	return 0
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// EstimateTimings spreads duration over the words of text in proportion to
// their letter count, leaving a pause after punctuated words. A duration of
// zero or less is estimated from the language's speaking speed.
func EstimateTimings(text string, l lang.Language, duration float64) []WordTiming {
	words := Words(text)
	if len(words) == 0 {
		return []WordTiming{}
	}

	speed, ok := charsPerSecond[l]
	if !ok {
		speed = charsPerSecond[lang.English]
	}
	ps, ok := pauses[l]
	if !ok {
		ps = pauses[lang.English]
	}

	chars := make([]int, len(words))
	wordPauses := make([]float64, len(words))
	totalChars := 0
	totalPause := 0.0
	for i, w := range words {
		chars[i] = max(wordChars(w), 1)
		wordPauses[i] = ps.after(w)
		totalChars += chars[i]
		totalPause += wordPauses[i]
	}

	if duration <= 0 {
		duration = float64(totalChars)/speed + totalPause
	}
	speaking := duration - totalPause

	out := make([]WordTiming, len(words))
	current := 0.0
	for i, w := range words {
		d := float64(chars[i]) / float64(totalChars) * speaking
		out[i] = WordTiming{Word: w, Start: round2(current), End: round2(current + d)}
		current += d + wordPauses[i]
	}
	return out
}

// ResolveTimings picks the timings to return for text given the configured
// mode and whatever the provider reported. Provider timings are used only
// when they cover every word.
func ResolveTimings(mode, text string, l lang.Language, provided []WordTiming) []WordTiming {
	switch mode {
	case TimingsOff:
		return []WordTiming{}
	case TimingsEstimate:
		return EstimateTimings(text, l, 0)
	}
	if len(provided) > 0 && len(provided) == len(Words(text)) {
		return provided
	}
	return EstimateTimings(text, l, 0)
}

func wordChars(w string) int {
	n := 0
	for _, r := range w {
		if isWordRune(r) {
			n++
		}
	}
	return n
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
