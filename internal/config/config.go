// Package config loads Lasi's YAML configuration and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/llm"
	"github.com/abhisek/lasi/internal/splitter"
	"github.com/abhisek/lasi/internal/tts"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	LLM       llm.Config      `yaml:"llm"`
	TTS       tts.Config      `yaml:"tts"`
	Store     StoreConfig     `yaml:"store"`
	Library   LibraryConfig   `yaml:"library"`
	Splitter  SplitterConfig  `yaml:"splitter"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Questions QuestionsConfig `yaml:"questions"`
	Client    ClientConfig    `yaml:"client"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures `lasi serve`.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`

	// Per-IP HTTP throttle.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	RateBurst          int `yaml:"rate_burst"`

	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// APIConfig tells clients where the server lives.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	// Path of the SQLite database. Empty uses the XDG data directory.
	Path string `yaml:"path"`
}

type LibraryConfig struct {
	// Path of a JSON text library. Empty uses the bundled sample texts.
	Path string `yaml:"path"`
}

type SplitterConfig struct {
	TargetTokens int    `yaml:"target_tokens"`
	Metric       string `yaml:"metric"` // "chars4" or "words"
}

// EvaluatorConfig sizes the per-user evaluation token bucket.
type EvaluatorConfig struct {
	Capacity        int           `yaml:"capacity"`
	RefillPerSecond float64       `yaml:"refill_per_second"`
	IdleTTL         time.Duration `yaml:"idle_ttl"`
}

type QuestionsConfig struct {
	BatchGroupSize int `yaml:"batch_group_size"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ClientConfig holds reader preferences for `lasi play`.
type ClientConfig struct {
	Language      string `yaml:"language"`
	Difficulty    string `yaml:"difficulty"`
	Strictness    int    `yaml:"strictness"`
	SimplifyLevel string `yaml:"simplify_level"`
	UserID        string `yaml:"user_id"`

	// AudioPlayer is a command that plays a file given as its last
	// argument, e.g. "mpv --no-video". Empty disables playback.
	AudioPlayer string `yaml:"audio_player"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // "production" or "development"
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with defaults for every field.
func DefaultConfig() *Config {
	t := tts.DefaultConfig()
	t.Cache.Dir = defaultCacheDir()

	return &Config{
		Server: ServerConfig{
			Addr:               ":8000",
			RateLimitPerMinute: 120,
			RateBurst:          20,
			AllowedOrigins:     []string{"*"},
			ShutdownTimeout:    10 * time.Second,
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 60 * time.Second,
		},
		LLM: llm.DefaultConfig(),
		TTS: t,
		Splitter: SplitterConfig{
			TargetTokens: splitter.DefaultTargetTokens,
			Metric:       string(splitter.MetricChars4),
		},
		Evaluator: EvaluatorConfig{
			Capacity:        8,
			RefillPerSecond: 0.15,
			IdleTTL:         30 * time.Minute,
		},
		Questions: QuestionsConfig{
			BatchGroupSize: 3,
			MaxConcurrency: 4,
		},
		Client: ClientConfig{
			Language:      string(lang.English),
			Difficulty:    string(gateway.DifficultyStandard),
			Strictness:    int(gateway.StrictnessBalanced),
			SimplifyLevel: string(gateway.LevelDefault),
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lasi/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".lasi", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lasi", "config.yaml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lasi", "tts")
}

// Load reads the configuration from path. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("LASI_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if a := os.Getenv("LASI_SERVER_ADDR"); a != "" {
		c.Server.Addr = a
	}
	if p := os.Getenv("LASI_DB"); p != "" {
		c.Store.Path = p
	}
	if m := os.Getenv("LASI_LOG_MODE"); m != "" {
		c.Log.Mode = m
	}
	c.LLM.ApplyEnv()
	c.TTS.ApplyEnv()
}

// Validate checks value ranges. LLM credentials are checked separately
// by the server, since clients never need them.
func (c *Config) Validate() error {
	if c.Server.RateLimitPerMinute <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("server rate limit and burst must be positive")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server base_path must start with '/': %q", c.Server.BasePath)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	if c.Splitter.TargetTokens <= 0 {
		return fmt.Errorf("splitter target_tokens must be positive")
	}
	if _, err := splitter.ParseMetric(c.Splitter.Metric); err != nil {
		return err
	}
	if c.Evaluator.Capacity <= 0 || c.Evaluator.RefillPerSecond <= 0 {
		return fmt.Errorf("evaluator capacity and refill_per_second must be positive")
	}
	if c.Questions.BatchGroupSize <= 0 || c.Questions.MaxConcurrency <= 0 {
		return fmt.Errorf("questions batch_group_size and max_concurrency must be positive")
	}
	if _, ok := lang.Parse(c.Client.Language); !ok {
		return fmt.Errorf("unsupported client language: %q", c.Client.Language)
	}
	if !gateway.Difficulty(c.Client.Difficulty).Valid() {
		return fmt.Errorf("unknown difficulty: %q", c.Client.Difficulty)
	}
	if c.Client.Strictness < 1 || c.Client.Strictness > 3 {
		return fmt.Errorf("strictness must be 1, 2 or 3, got %d", c.Client.Strictness)
	}
	if !gateway.Level(c.Client.SimplifyLevel).Valid() {
		return fmt.Errorf("unknown simplify level: %q", c.Client.SimplifyLevel)
	}
	switch c.Log.Mode {
	case "production", "development":
	default:
		return fmt.Errorf("log mode must be production or development, got %q", c.Log.Mode)
	}
	return c.TTS.Validate()
}

// GatewayOptions maps the evaluator, questions and speech settings onto
// gateway options.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		BatchGroupSize: c.Questions.BatchGroupSize,
		MaxConcurrency: c.Questions.MaxConcurrency,
		EvalCapacity:   c.Evaluator.Capacity,
		EvalRefill:     c.Evaluator.RefillPerSecond,
		EvalIdleTTL:    c.Evaluator.IdleTTL,
		Timings:        c.TTS.Timings,
	}
}
