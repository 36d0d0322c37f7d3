package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Metric is how a token budget is measured against text.
type Metric string

const (
	// MetricChars4 approximates LLM tokens as one token per four characters.
	MetricChars4 Metric = "chars4"
	// MetricWords counts whitespace-separated words.
	MetricWords Metric = "words"
)

// ParseMetric validates a metric name. Empty means MetricChars4.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", MetricChars4:
		return MetricChars4, nil
	case MetricWords:
		return MetricWords, nil
	default:
		return "", fmt.Errorf("unknown size metric %q (want %q or %q)", s, MetricChars4, MetricWords)
	}
}

// Estimate returns the approximate token count of s.
func (m Metric) Estimate(s string) int {
	if m == MetricWords {
		return len(strings.Fields(s))
	}
	return (utf8.RuneCountInString(s) + 3) / 4
}

// raw measures s in the metric's native unit: runes or words.
func (m Metric) raw(s string) int {
	if m == MetricWords {
		return len(strings.Fields(s))
	}
	return utf8.RuneCountInString(s)
}

// scale converts a token budget into native units.
func (m Metric) scale() int {
	if m == MetricWords {
		return 1
	}
	return 4
}
