package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestHeaderTruncatesLongTitles(t *testing.T) {
	title := strings.Repeat("Ļoti gara pasaka ", 10)
	h := RenderHeader(title, "lv  ✓2 ✗1", 80)

	assert.Equal(t, 3, lipgloss.Height(h), "border plus one line")
	assert.Contains(t, h, "…")
	assert.Contains(t, h, "✓2 ✗1")
	assert.Contains(t, h, "Lasi")
}

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "q", Description: "Questions"},
		{Key: "b", Description: "All parts"},
		{Key: "s", Description: "Simplify"},
		{Key: "p", Description: "Listen"},
		{Key: "ctrl+c", Description: "Quit"},
	}
	wide := RenderFooter(hints, 120)
	assert.Contains(t, wide, "Quit")

	narrow := RenderFooter(hints, 40)
	assert.Equal(t, 3, lipgloss.Height(narrow))
	assert.Contains(t, narrow, "Questions")
	assert.NotContains(t, narrow, "Quit")
}

func TestFrameFillsHeight(t *testing.T) {
	out := RenderFrame(RenderHeader("T", "", 80), "body", RenderFooter(nil, 80), 80, 24)
	assert.Equal(t, 24, lipgloss.Height(out))
	assert.True(t, IsTooSmall(60, 24))
	assert.False(t, IsTooSmall(MinWidth, MinHeight))
	assert.Contains(t, RenderMinSizeMessage(40, 10), "40 x 10")
}
