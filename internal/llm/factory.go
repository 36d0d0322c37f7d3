package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/store"
)

// NewProvider builds the provider stack from cfg. Each named provider is
// built once, wrapped in logging and the request timeout, and shared by
// every purpose routed to it.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	built := make(map[string]Provider)
	build := func(name string) (Provider, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		base, err := newBaseProvider(ctx, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("init %s provider: %w", name, err)
		}
		p := WithTimeout(WithLogging(base, name, repo, log), cfg.Timeout)
		built[name] = p
		return p, nil
	}

	fallback, err := build(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if len(cfg.Routes) == 0 {
		return fallback, nil
	}
	routes := make(map[string]Provider, len(cfg.Routes))
	for purpose, name := range cfg.Routes {
		if routes[purpose], err = build(name); err != nil {
			return nil, err
		}
	}
	return NewRouter(fallback, routes), nil
}

func newBaseProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "deepseek":
		return NewDeepSeekProvider(cfg.DeepSeek)
	case "mock":
		return NewMockProvider(), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", name)
}

// WithTimeout bounds each Generate call. d <= 0 returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return timeoutProvider{inner: p, timeout: d}
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t timeoutProvider) ModelID() string { return t.inner.ModelID() }
