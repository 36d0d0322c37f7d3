// Package llm talks to the chat model providers behind the AI gateway.
// Every call goes through Provider, which returns either plain text or
// schema-validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

// defaultMaxTokens applies when a Request leaves MaxTokens unset.
const defaultMaxTokens = 1024

type Provider interface {
	// Generate runs one completion. With req.Schema set the returned
	// Content is JSON that validates against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, after alias resolution.
	ModelID() string
}

// Request is a single completion. Lasi never holds a conversation, so
// Messages is normally one user turn.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// maxTokens returns the output budget, defaulted.
func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema plus the name providers want alongside it.
// Name doubles as the compiled-schema cache key, so it must be unique.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is why the model stopped, normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Response struct {
	// Content is validated JSON when the request carried a Schema and
	// the raw text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// finish validates raw model output for req and builds the Response.
// Structured output cut off at the token limit is ErrMaxTokensExceeded
// rather than a validation failure.
func finish(req Request, raw json.RawMessage, model string, stop StopReason, usage Usage) (*Response, error) {
	if req.Schema != nil && stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: raw, MaxTokens: req.maxTokens()}
	}
	content, err := validateResponse(req.Schema, raw)
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
