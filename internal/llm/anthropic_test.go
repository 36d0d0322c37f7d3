package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicAgainst(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-haiku-4-5-20251001",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 18},
		})
	}
}

func anthropicFailure(status int, retryAfter string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	}
}

func TestAnthropicQuestions(t *testing.T) {
	p := anthropicAgainst(t, anthropicReply(`{"questions":["Who found the key?"]}`, "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a reading teacher.",
		Messages: []Message{{Role: RoleUser, Content: "The girl found a key under the mat."}},
		Schema:   questionsSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":["Who found the key?"]}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 18, TotalTokens: 138}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)
}

func TestAnthropicTruncatedJSON(t *testing.T) {
	p := anthropicAgainst(t, anthropicReply(`{"questions":["Who found`, "max_tokens"))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "story"}},
		Schema:    questionsSchema(),
		MaxTokens: 16,
	})
	var trunc *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, 16, trunc.MaxTokens)
}

func TestAnthropicRateLimitCarriesRetryAfter(t *testing.T) {
	p := anthropicAgainst(t, anthropicFailure(http.StatusTooManyRequests, "7"))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	wait, ok := RetryAfter(err)
	require.True(t, ok, "got %T: %v", err, err)
	assert.Equal(t, 7*time.Second, wait)
}

func TestAnthropicServerError(t *testing.T) {
	p := anthropicAgainst(t, anthropicFailure(http.StatusInternalServerError, ""))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)
	_, limited := RetryAfter(err)
	assert.False(t, limited)
}

func TestNewAnthropicProviderResolvesAlias(t *testing.T) {
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.ModelID())

	_, err = NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)
}
