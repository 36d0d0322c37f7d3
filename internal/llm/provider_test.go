package llm

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: newUsage(10, 5)},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := WithPurpose(context.Background(), PurposeEvaluate)

	resp, err := mock.Generate(ctx, Request{System: "sys"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	_, err = mock.Generate(ctx, Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = mock.Generate(ctx, Request{})
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down, "an empty queue fails")

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
	assert.Equal(t, []string{PurposeEvaluate, PurposeEvaluate, PurposeEvaluate}, mock.Purposes)
	assert.Equal(t, "mock", mock.ModelID())
}

func TestMockProviderFuncIsConcurrencySafe(t *testing.T) {
	mock := NewMockProviderFunc(func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(req.Messages[0].Content)}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: `"x"`}}})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, mock.CallCount())
}

func TestPurposeDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, PurposeQuestionsBatch, PurposeFrom(WithPurpose(context.Background(), PurposeQuestionsBatch)))
}

func TestFinish(t *testing.T) {
	schema := questionsSchema()

	resp, err := finish(Request{Schema: schema}, json.RawMessage(" {\"questions\":[]} "), "m", StopEnd, Usage{})
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, string(resp.Content))

	_, err = finish(Request{Schema: schema, MaxTokens: 50}, json.RawMessage(`{"questions":["W`), "m", StopMaxTokens, Usage{})
	var trunc *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, 50, trunc.MaxTokens)

	resp, err = finish(Request{}, json.RawMessage("cut off mid"), "m", StopMaxTokens, Usage{})
	require.NoError(t, err, "free text may be truncated")
	assert.Equal(t, StopMaxTokens, resp.StopReason)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no provider", Config{}, true},
		{"unknown provider", Config{Provider: "llama"}, true},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "a"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"route to keyless provider", Config{Provider: "mock", Routes: map[string]string{PurposeSimplify: "deepseek"}}, true},
		{"route to configured provider", Config{
			Provider: "mock",
			DeepSeek: DeepSeekConfig{APIKey: "d"},
			Routes:   map[string]string{PurposeSimplify: "deepseek"},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
