package tts

import (
	"fmt"
	"os"
	"time"
)

// Config holds speech synthesis configuration.
type Config struct {
	// Providers lists synthesizers in the order they are tried.
	// Values: "openai", "google", "huggingface". Providers without a key
	// are skipped.
	Providers []string `yaml:"providers"`

	OpenAI      OpenAIConfig      `yaml:"openai"`
	Google      GoogleConfig      `yaml:"google"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`

	// Timings is one of "provider", "estimate" or "off".
	Timings string `yaml:"timings"`

	Cache CacheConfig `yaml:"cache"`

	// Timeout bounds one synthesis attempt. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "tts-1"
	Voice   string `yaml:"voice"` // Default: "nova"
	BaseURL string `yaml:"base_url"`
}

type GoogleConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type HuggingFaceConfig struct {
	Token   string            `yaml:"token"`
	BaseURL string            `yaml:"base_url"`
	Models  map[string]string `yaml:"models"`
}

// CacheConfig selects where synthesized audio is kept. An empty Dir
// disables the disk cache; an empty RedisAddr disables Redis.
type CacheConfig struct {
	Dir       string        `yaml:"dir"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// DefaultConfig returns the default speech configuration.
func DefaultConfig() Config {
	return Config{
		Providers: []string{"openai", "google", "huggingface"},
		OpenAI: OpenAIConfig{
			Model: "tts-1",
			Voice: "nova",
		},
		Timings: TimingsProvider,
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv fills provider keys and the Redis address from the environment.
func (c *Config) ApplyEnv() {
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.OpenAI.APIKey = k
	}
	if k := os.Getenv("GOOGLE_TTS_API_KEY"); k != "" {
		c.Google.APIKey = k
	}
	if k := os.Getenv("HF_API_TOKEN"); k != "" {
		c.HuggingFace.Token = k
	}
	if a := os.Getenv("LASI_REDIS_ADDR"); a != "" {
		c.Cache.RedisAddr = a
	}
}

// Validate checks provider names and the timing mode.
func (c Config) Validate() error {
	for _, p := range c.Providers {
		switch p {
		case "openai", "google", "huggingface":
		default:
			return fmt.Errorf("unknown tts provider: %q", p)
		}
	}
	switch c.Timings {
	case TimingsProvider, TimingsEstimate, TimingsOff:
	default:
		return fmt.Errorf("tts timings must be provider, estimate or off, got %q", c.Timings)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("tts cache ttl must not be negative")
	}
	return nil
}

// RedactKeys masks provider credentials, for printing.
func (c *Config) RedactKeys() {
	for _, k := range []*string{&c.OpenAI.APIKey, &c.Google.APIKey, &c.HuggingFace.Token} {
		if *k != "" {
			*k = "***"
		}
	}
}
