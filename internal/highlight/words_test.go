package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordSpansMatchFields(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"one",
		"  The cat\tsat\non the   mat. ",
		"Kaķis sēdēja uz paklāja.",
	}
	for _, text := range texts {
		spans := WordSpans(text)
		fields := strings.Fields(text)
		if assert.Len(t, spans, len(fields), "text %q", text) {
			for i, sp := range spans {
				assert.Equal(t, fields[i], text[sp.Start:sp.End])
			}
		}
	}
}

func TestMarkWord(t *testing.T) {
	text := "The cat sat."
	assert.Equal(t, "The [cat] sat.", MarkWord(text, 1, mark))
	assert.Equal(t, "The cat [sat.]", MarkWord(text, 2, mark))
	assert.Equal(t, text, MarkWord(text, 3, mark))
	assert.Equal(t, text, MarkWord(text, -1, mark))
}
