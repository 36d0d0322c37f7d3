package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the default LLM provider. Empty means "pick the
	// first provider whose API key is present in the environment".
	// Values: "gemini", "openai", "anthropic", "openrouter", "deepseek", "mock"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	DeepSeek   DeepSeekConfig   `yaml:"deepseek"`

	// Routes sends requests with a given purpose (see WithPurpose) to a
	// provider other than the default, e.g. {"simplify": "deepseek"}.
	Routes map[string]string `yaml:"routes"`

	// Timeout bounds a single LLM request. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash-lite"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.5-flash-lite"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// DeepSeekConfig holds DeepSeek-specific configuration.
type DeepSeekConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "deepseek-chat"
	BaseURL string `yaml:"base_url"` // Default: "https://api.deepseek.com"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash-lite",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash-lite",
		},
		DeepSeek: DeepSeekConfig{
			Model:   "deepseek-chat",
			BaseURL: defaultDeepSeekBaseURL,
		},
		Routes:  map[string]string{},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv fills API keys from the standard provider environment variables
// and, when no provider is selected, picks the first one with a key
// (Gemini → OpenAI → Anthropic → OpenRouter → DeepSeek). When a DeepSeek
// key is present and simplification has no route yet, simplification is
// routed to DeepSeek.
func (c *Config) ApplyEnv() {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Gemini.APIKey = k
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.OpenAI.APIKey = k
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Anthropic.APIKey = k
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		c.OpenRouter.APIKey = k
	}
	if k := os.Getenv("DEEPSEEK_API_KEY"); k != "" {
		c.DeepSeek.APIKey = k
	}
	if p := os.Getenv("LASI_LLM_PROVIDER"); p != "" {
		c.Provider = p
	}

	if c.Provider == "" {
		switch {
		case c.Gemini.APIKey != "":
			c.Provider = "gemini"
		case c.OpenAI.APIKey != "":
			c.Provider = "openai"
		case c.Anthropic.APIKey != "":
			c.Provider = "anthropic"
		case c.OpenRouter.APIKey != "":
			c.Provider = "openrouter"
		case c.DeepSeek.APIKey != "":
			c.Provider = "deepseek"
		}
	}

	if c.DeepSeek.APIKey != "" && c.Provider != "deepseek" {
		if c.Routes == nil {
			c.Routes = map[string]string{}
		}
		if _, ok := c.Routes[PurposeSimplify]; !ok {
			c.Routes[PurposeSimplify] = "deepseek"
		}
	}
}

// Validate checks that the default provider and every routed provider
// have their required API key set.
func (c Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("no LLM provider configured (set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY or DEEPSEEK_API_KEY)")
	}
	if err := c.validateProvider(c.Provider); err != nil {
		return err
	}
	for purpose, name := range c.Routes {
		if err := c.validateProvider(name); err != nil {
			return fmt.Errorf("route %q: %w", purpose, err)
		}
	}
	return nil
}

func (c Config) validateProvider(name string) error {
	switch name {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "deepseek":
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", name)
	}
	return nil
}

// RedactKeys masks every API key, for printing.
func (c *Config) RedactKeys() {
	for _, k := range []*string{
		&c.Gemini.APIKey, &c.OpenAI.APIKey, &c.Anthropic.APIKey,
		&c.OpenRouter.APIKey, &c.DeepSeek.APIKey,
	} {
		*k = redact(*k)
	}
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "***"
}
