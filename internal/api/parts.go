package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Part is one named fragment of a text.
type Part struct {
	Name string
	Text string
}

// Parts is an ordered part list that travels as a JSON object
// ({"Part 1": "...", "Part 2": "..."}) with its key order preserved.
type Parts []Part

// Get returns the text of the part called name.
func (p Parts) Get(name string) (string, bool) {
	for _, part := range p {
		if part.Name == name {
			return part.Text, true
		}
	}
	return "", false
}

// Names returns the part names in order.
func (p Parts) Names() []string {
	out := make([]string, len(p))
	for i, part := range p {
		out[i] = part.Name
	}
	return out
}

func (p Parts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, part := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(part.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(part.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Parts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("parts: expected object, got %v", tok)
	}

	out := Parts{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("parts: expected string key, got %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("parts: value of %q: %w", name, err)
		}
		out = append(out, Part{Name: name, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}
