package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionsSchema() *Schema {
	return &Schema{
		Name: "test-questions",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []any{"questions"},
		},
	}
}

// chatServer answers chat completions with content and records the last
// request body and headers.
type chatServer struct {
	content string
	finish  string
	status  int
	header  http.Header

	body    map[string]any
	request http.Header
}

func (c *chatServer) start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		c.body = nil
		_ = json.Unmarshal(raw, &c.body)
		c.request = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		for k, v := range c.header {
			w.Header()[k] = v
		}
		if c.status != 0 {
			w.WriteHeader(c.status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": "requests", "message": "nope", "code": "rate_limit_exceeded"},
			})
			return
		}
		finish := c.finish
		if finish == "" {
			finish = "stop"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": c.content}, "finish_reason": finish}},
			"usage":   map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func TestOpenAIStrictSchema(t *testing.T) {
	cs := &chatServer{content: `{"questions":["Where was the door?"]}`}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: cs.start(t)})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a reading teacher.",
		Messages:  []Message{{Role: RoleUser, Content: "The door was red."}},
		Schema:    questionsSchema(),
		MaxTokens: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	format := cs.body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, float64(300), cs.body["max_completion_tokens"])
	assert.Nil(t, cs.body["max_tokens"])
}

func TestOpenAIPlainTextSkipsValidation(t *testing.T) {
	cs := &chatServer{content: "A shorter story."}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: cs.start(t)})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "simplify"}}})
	require.NoError(t, err)
	assert.Equal(t, "A shorter story.", string(resp.Content))
	assert.Nil(t, cs.body["response_format"])
	assert.Equal(t, float64(defaultMaxTokens), cs.body["max_completion_tokens"])
}

func TestOpenAILengthStop(t *testing.T) {
	cs := &chatServer{content: `{"questions":[`, finish: "length"}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: cs.start(t)})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Schema: questionsSchema()})
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)
}

func TestOpenAIRateLimitReadsHeader(t *testing.T) {
	cs := &chatServer{status: http.StatusTooManyRequests, header: http.Header{"Retry-After": {"2"}}}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: cs.start(t)})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	wait, ok := RetryAfter(err)
	require.True(t, ok, "got %T: %v", err, err)
	assert.Equal(t, 2*time.Second, wait)
}

func TestOpenAIServerError(t *testing.T) {
	cs := &chatServer{status: http.StatusBadGateway}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: cs.start(t)})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)
}

func TestDeepSeekUsesJSONObjectMode(t *testing.T) {
	cs := &chatServer{content: "```json\n{\"questions\":[\"Who?\"]}\n```"}
	p, err := NewDeepSeekProvider(DeepSeekConfig{APIKey: "sk-ds", BaseURL: cs.start(t)})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write questions.",
		Messages:  []Message{{Role: RoleUser, Content: "Once upon a time."}},
		Schema:    questionsSchema(),
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"questions":["Who?"]}`, string(resp.Content))

	assert.Equal(t, "json_object", cs.body["response_format"].(map[string]any)["type"])
	assert.Equal(t, float64(256), cs.body["max_tokens"])
	system := cs.body["messages"].([]any)[0].(map[string]any)["content"].(string)
	assert.True(t, strings.HasPrefix(system, "You write questions.\n\n"))
	assert.Contains(t, system, "JSON Schema")
}

func TestOpenRouterSendsAttribution(t *testing.T) {
	cs := &chatServer{content: "ok"}
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "google/gemini-2.5-flash-lite", BaseURL: cs.start(t)})
	require.NoError(t, err)
	assert.Equal(t, "google/gemini-2.5-flash-lite", p.ModelID())

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "Lasi", cs.request.Get("X-Title"))
	assert.Equal(t, "Bearer sk-or", cs.request.Get("Authorization"))
}

func TestCompatibleProvidersRequireKeys(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"})
	assert.Error(t, err)
	_, err = NewDeepSeekProvider(DeepSeekConfig{})
	assert.Error(t, err)
	_, err = NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)
}
