package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasi/internal/lang"
)

func TestEstimateTimings_HelloWorld(t *testing.T) {
	got := EstimateTimings("Hello world.", lang.English, 0)
	require.Len(t, got, 2)
	assert.Equal(t, WordTiming{Word: "Hello", Start: 0, End: 0.38}, got[0])
	assert.Equal(t, WordTiming{Word: "world.", Start: 0.38, End: 0.77}, got[1])
}

func TestEstimateTimings_PauseAfterPunctuation(t *testing.T) {
	got := EstimateTimings("One, two three.", lang.English, 0)
	require.Len(t, got, 3)
	// 11 letters at 13 chars/s plus 0.2 + 0.4 of pauses.
	gap := got[1].Start - got[0].End
	assert.InDelta(t, 0.2, gap, 0.011)
	assert.InDelta(t, 0, got[2].Start-got[1].End, 0.011)
}

func TestEstimateTimings_KnownDuration(t *testing.T) {
	got := EstimateTimings("aa bb", lang.English, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].Start)
	assert.Equal(t, 1.0, got[0].End)
	assert.Equal(t, 2.0, got[1].End)
}

func TestEstimateTimings_LanguageSpeed(t *testing.T) {
	en := EstimateTimings("Labdien pasaule", lang.English, 0)
	ru := EstimateTimings("Labdien pasaule", lang.Russian, 0)
	assert.Greater(t, ru[1].End, en[1].End)
}

func TestEstimateTimings_MonotonicAndNonOverlapping(t *testing.T) {
	text := "Ķēniņš gāja pa ceļu; viņš redzēja - ko? Neko! Tad: mājās, ātri."
	got := EstimateTimings(text, lang.Latvian, 0)
	require.Len(t, got, len(Words(text)))
	for i, w := range got {
		assert.LessOrEqual(t, w.Start, w.End, "word %d", i)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].End, w.Start, "word %d", i)
		}
	}
}

func TestEstimateTimings_PunctuationOnlyWordCountsOneChar(t *testing.T) {
	got := EstimateTimings("a -", lang.English, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].End)
}

func TestEstimateTimings_Empty(t *testing.T) {
	assert.Empty(t, EstimateTimings("   ", lang.English, 0))
	assert.NotNil(t, EstimateTimings("", lang.English, 0))
}

func TestResolveTimings(t *testing.T) {
	text := "one two"
	provided := []WordTiming{{Word: "one", Start: 0, End: 0.5}, {Word: "two", Start: 0.5, End: 1}}

	assert.Equal(t, provided, ResolveTimings(TimingsProvider, text, lang.English, provided))
	assert.Equal(t, EstimateTimings(text, lang.English, 0), ResolveTimings(TimingsProvider, text, lang.English, provided[:1]))
	assert.Equal(t, EstimateTimings(text, lang.English, 0), ResolveTimings(TimingsEstimate, text, lang.English, provided))
	assert.Empty(t, ResolveTimings(TimingsOff, text, lang.English, provided))
}
