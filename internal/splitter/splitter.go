// Package splitter partitions a text into reading-sized fragments.
//
// Splitting is rule based and deterministic: the same text and budget
// always produce the same fragments. Every fragment is an exact substring
// of the trimmed input, so joining the fragments with whitespace gives back
// the original content.
package splitter

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTargetTokens is used when a caller passes a non-positive budget.
const DefaultTargetTokens = 400

// MaxTargetTokens caps a budget so that scaling it to native units and by
// softMaxRatio stays within int. No real text comes near it, so a capped
// budget still keeps any text in one fragment.
const MaxTargetTokens = math.MaxInt / 8

const (
	softMinRatio = 0.65
	softMaxRatio = 1.4
	runtRatio    = 0.25
)

// Options configures a Splitter.
type Options struct {
	DefaultTargetTokens int
	Metric              Metric
}

// Splitter splits text into fragments under a token budget.
type Splitter struct {
	defaultTarget int
	metric        Metric
}

// New creates a Splitter. Zero options select the defaults.
func New(opts Options) *Splitter {
	s := &Splitter{defaultTarget: opts.DefaultTargetTokens, metric: opts.Metric}
	if s.defaultTarget <= 0 {
		s.defaultTarget = DefaultTargetTokens
	}
	if s.metric == "" {
		s.metric = MetricChars4
	}
	return s
}

// Part is a fragment named for storage.
type Part struct {
	Name string
	Text string
}

// PartName returns the display name of the fragment at index i.
func PartName(i int) string {
	return fmt.Sprintf("Part %d", i+1)
}

// Estimate returns the token estimate of text under the configured metric.
func (s *Splitter) Estimate(text string) int {
	return s.metric.Estimate(text)
}

// Preview splits text without naming the pieces.
func (s *Splitter) Preview(text string, targetTokens int) []string {
	return s.Split(text, targetTokens)
}

// Apply splits text and names the pieces "Part 1", "Part 2", ...
func (s *Splitter) Apply(text string, targetTokens int) []Part {
	frags := s.Split(text, targetTokens)
	parts := make([]Part, len(frags))
	for i, f := range frags {
		parts[i] = Part{Name: PartName(i), Text: f}
	}
	return parts
}

// Split partitions text into fragments of roughly targetTokens each.
// Empty or whitespace-only text yields nil. Text within budget yields a
// single fragment.
func (s *Splitter) Split(text string, targetTokens int) []string {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	if targetTokens <= 0 {
		targetTokens = s.defaultTarget
	}
	targetTokens = min(targetTokens, MaxTargetTokens)

	budget := targetTokens * s.metric.scale()
	if s.metric.raw(t) <= budget {
		return []string{t}
	}

	spans := s.pack(t, s.units(t, budget), budget)

	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = t[sp.start:sp.end]
	}
	return out
}

// units breaks t into paragraphs, then sentences, then word runs for any
// sentence too long to fit a fragment on its own.
func (s *Splitter) units(t string, budget int) []unit {
	hardMax := int(float64(budget) * softMaxRatio)

	var out []unit
	for pi, p := range paragraphs(t) {
		first := pi > 0
		for _, sent := range sentences(t, p.start, p.end) {
			pieces := []span{sent}
			if s.metric.raw(t[sent.start:sent.end]) > hardMax {
				pieces = s.wordRuns(t, sent, budget)
			}
			for _, piece := range pieces {
				out = append(out, unit{span: piece, paragraph: first})
				first = false
			}
		}
	}
	return out
}

// wordRuns cuts an oversized sentence at word boundaries into runs that
// each fit the budget. A single word longer than the budget is kept whole.
func (s *Splitter) wordRuns(t string, sent span, budget int) []span {
	var out []span
	cur := span{start: -1}
	for _, w := range words(t, sent.start, sent.end) {
		if cur.start < 0 {
			cur = w
			continue
		}
		if s.metric.raw(t[cur.start:w.end]) > budget {
			out = append(out, cur)
			cur = w
			continue
		}
		cur.end = w.end
	}
	if cur.start >= 0 {
		out = append(out, cur)
	}
	return out
}

// pack greedily groups consecutive units into fragments. A unit that would
// push the fragment past the budget starts a new fragment, except that a
// fragment still below the soft minimum may run over up to the soft
// maximum inside a paragraph rather than end as a runt.
func (s *Splitter) pack(t string, units []unit, budget int) []span {
	softMin := int(float64(budget) * softMinRatio)
	softMax := int(float64(budget) * softMaxRatio)

	var out []span
	cur := span{start: -1}
	for _, u := range units {
		if cur.start < 0 {
			cur = u.span
			continue
		}
		size := s.metric.raw(t[cur.start:cur.end])
		grown := s.metric.raw(t[cur.start:u.end])
		switch {
		case grown <= budget:
			cur.end = u.end
		case size < softMin && grown <= softMax && !u.paragraph:
			cur.end = u.end
		default:
			out = append(out, cur)
			cur = u.span
		}
	}
	if cur.start >= 0 {
		out = append(out, cur)
	}

	// Fold a tiny trailing fragment into its predecessor when that stays
	// within the soft maximum.
	if n := len(out); n > 1 {
		last, prev := out[n-1], out[n-2]
		if s.metric.raw(t[last.start:last.end]) < int(float64(budget)*runtRatio) &&
			s.metric.raw(t[prev.start:last.end]) <= softMax {
			out[n-2].end = last.end
			out = out[:n-1]
		}
	}
	return out
}
