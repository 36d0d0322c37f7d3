package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartsKeepOrder(t *testing.T) {
	parts := Parts{
		{Name: "Part 10", Text: "ten"},
		{Name: "Part 2", Text: "two \"quoted\""},
		{Name: "Part 1", Text: "one"},
	}

	raw, err := json.Marshal(parts)
	require.NoError(t, err)
	assert.Equal(t, `{"Part 10":"ten","Part 2":"two \"quoted\"","Part 1":"one"}`, string(raw))

	var back Parts
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, parts, back)
	assert.Equal(t, []string{"Part 10", "Part 2", "Part 1"}, back.Names())
}

func TestPartsInsideText(t *testing.T) {
	raw := []byte(`{"name":"Fox","language":"English","parts":{"b":"2","a":"1"}}`)
	var txt Text
	require.NoError(t, json.Unmarshal(raw, &txt))
	assert.Equal(t, Parts{{Name: "b", Text: "2"}, {Name: "a", Text: "1"}}, txt.Parts)

	v, ok := txt.Parts.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = txt.Parts.Get("c")
	assert.False(t, ok)
}

func TestPartsEmptyAndNull(t *testing.T) {
	var p Parts
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.Empty(t, p)

	raw, err := json.Marshal(Parts{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Nil(t, p)
}

func TestPartsRejectsNonObject(t *testing.T) {
	var p Parts
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &p))
}
