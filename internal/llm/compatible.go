package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultDeepSeekBaseURL   = "https://api.deepseek.com"
)

// openRouterHeaders identify the app on OpenRouter's dashboards.
var openRouterHeaders = http.Header{
	"HTTP-Referer": {"https://github.com/abhisek/lasi"},
	"X-Title":      {"Lasi"},
}

// NewOpenRouterProvider targets OpenRouter. Model IDs carry the vendor
// prefix ("google/gemini-2.5-flash-lite") and are never aliased.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	return newOpenAIProvider(cfg.APIKey, orDefault(cfg.BaseURL, defaultOpenRouterBaseURL), cfg.Model, openRouterHeaders), nil
}

// NewDeepSeekProvider targets DeepSeek, which only has json_object
// output. The schema goes into the system prompt and the reply is still
// validated.
func NewDeepSeekProvider(cfg DeepSeekConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}
	p := newOpenAIProvider(cfg.APIKey, orDefault(cfg.BaseURL, defaultDeepSeekBaseURL), orDefault(cfg.Model, "deepseek-chat"), nil)
	p.jsonObject = true
	return p, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
