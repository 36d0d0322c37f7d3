package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds one compiled validator per Schema.Name.
var compiledSchemas = struct {
	sync.Mutex
	byName map[string]*jsonschema.Schema
}{byName: map[string]*jsonschema.Schema{}}

// validateResponse checks raw model output against schema and returns
// the cleaned JSON. A nil schema passes raw through untouched.
func validateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	body := extractJSON(raw)
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, invalid("not JSON: %w", err)
	}
	validator, err := compileSchema(schema)
	if err != nil {
		return nil, invalid("schema %s: %w", schema.Name, err)
	}
	if err := validator.Validate(doc); err != nil {
		return nil, invalid("does not match %s: %w", schema.Name, err)
	}
	return body, nil
}

// extractJSON trims whitespace and an enclosing Markdown code fence,
// which json_object mode models like to add.
func extractJSON(raw []byte) json.RawMessage {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = bytes.TrimPrefix(b, []byte("json"))
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	compiledSchemas.Lock()
	defer compiledSchemas.Unlock()
	if s, ok := compiledSchemas.byName[schema.Name]; ok {
		return s, nil
	}

	// The compiler wants decoded JSON values, not Go maps of arbitrary
	// types, so the definition takes a round trip through encoding/json.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}
	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiledSchemas.byName[schema.Name] = s
	return s, nil
}
