package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider calls the chat completions API. It also serves the
// OpenAI-compatible endpoints in compatible.go.
type OpenAIProvider struct {
	client *openai.Client
	model  string

	// jsonObject selects json_object output with the schema written into
	// the system prompt, for endpoints without json_schema support.
	jsonObject bool
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	return newOpenAIProvider(cfg.APIKey, cfg.BaseURL, resolveModel("openai", cfg.Model), nil), nil
}

// newOpenAIProvider builds the client. extra headers go on every request.
func newOpenAIProvider(key, baseURL, model string, extra http.Header) *OpenAIProvider {
	config := openai.DefaultConfig(key)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &headerDoer{client: http.DefaultClient, extra: extra}
	return &OpenAIProvider{client: openai.NewClientWithConfig(config), model: model}
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}

	var seen http.Header
	resp, err := p.client.CreateChatCompletion(withHeaderSink(ctx, &seen), chatReq)
	if err != nil {
		return nil, openaiError(err, seen)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("chat completion has no choices")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	usage := newUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return finish(req, json.RawMessage(choice.Message.Content), resp.Model, stop, usage)
}

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	system := req.System
	if req.Schema != nil && p.jsonObject {
		system = withSchemaInstructions(system, req.Schema)
	}

	out := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: float32(req.Temperature),
	}
	if system != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	// Compatible endpoints only know max_tokens.
	if p.jsonObject {
		out.MaxTokens = req.maxTokens()
	} else {
		out.MaxCompletionTokens = req.maxTokens()
	}

	switch {
	case req.Schema == nil:
	case p.jsonObject:
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	default:
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return out, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}
	return out, nil
}

// withSchemaInstructions appends the schema to the system prompt.
func withSchemaInstructions(system string, schema *Schema) string {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return system
	}
	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	b.WriteString("Reply with one JSON object and nothing else. It must match this JSON Schema")
	if schema.Description != "" {
		fmt.Fprintf(&b, " (%s)", schema.Description)
	}
	b.WriteString(":\n")
	b.Write(def)
	return b.String()
}

func openaiError(err error, header http.Header) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, header, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, header, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

type headerSinkKey struct{}

// withHeaderSink asks headerDoer to store the response headers of the
// request made with ctx in *dst. go-openai does not expose them.
func withHeaderSink(ctx context.Context, dst *http.Header) context.Context {
	return context.WithValue(ctx, headerSinkKey{}, dst)
}

// headerDoer adds fixed headers to requests and hands response headers
// back through the request context.
type headerDoer struct {
	client *http.Client
	extra  http.Header
}

func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	for k, vs := range d.extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if dst, ok := req.Context().Value(headerSinkKey{}).(*http.Header); ok && dst != nil {
		*dst = resp.Header.Clone()
	}
	return resp, nil
}
