// Package lang normalizes the reading languages Lasi supports and holds the
// small table of user-facing messages shown in each of them.
package lang

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Language is the canonical English name of a supported reading language.
// It is also the value carried on the wire.
type Language string

const (
	English Language = "English"
	Latvian Language = "Latvian"
	Spanish Language = "Spanish"
	Russian Language = "Russian"
)

// Default is used when a request carries no language or an unknown one.
const Default = English

// All lists the supported languages in menu order.
var All = []Language{English, Latvian, Spanish, Russian}

var tags = map[Language]language.Tag{
	English: language.English,
	Latvian: language.Latvian,
	Spanish: language.Spanish,
	Russian: language.Russian,
}

// Parse resolves a full language name ("latvian") or a BCP 47 code
// ("lv", "es-ES") to a supported Language.
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, l := range All {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	for l, t := range tags {
		if b, _ := t.Base(); b == base {
			return l, true
		}
	}
	return "", false
}

// Normalize is Parse with a fallback to Default.
func Normalize(s string) Language {
	if l, ok := Parse(s); ok {
		return l
	}
	return Default
}

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	if t, ok := tags[l]; ok {
		return t
	}
	return language.English
}

// Code returns the two-letter ISO 639-1 code.
func (l Language) Code() string {
	b, _ := l.Tag().Base()
	return b.String()
}

// Next cycles through All, used by language pickers.
func (l Language) Next() Language {
	for i, x := range All {
		if x == l {
			return All[(i+1)%len(All)]
		}
	}
	return Default
}

// Upper uppercases text using the casing rules of l.
func Upper(l Language, text string) string {
	return cases.Upper(l.Tag()).String(text)
}

// Lower lowercases text using the casing rules of l.
func Lower(l Language, text string) string {
	return cases.Lower(l.Tag()).String(text)
}
