package tts

import (
	"context"
	"net/http"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
)

// New builds the provider chain described by cfg, wrapped in the configured
// caches. Providers whose key is missing are skipped; when none remain the
// returned synthesizer fails every call with ErrNoProvider. The returned
// close function releases cache connections.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Synthesizer, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var providers []Synthesizer
	for _, name := range cfg.Providers {
		var (
			s   Synthesizer
			err error
		)
		switch name {
		case "openai":
			if cfg.OpenAI.APIKey == "" {
				continue
			}
			s, err = NewOpenAISynthesizer(cfg.OpenAI)
		case "google":
			if cfg.Google.APIKey == "" {
				continue
			}
			s, err = NewGoogleSynthesizer(cfg.Google, client)
		case "huggingface":
			if cfg.HuggingFace.Token == "" {
				continue
			}
			s, err = NewHFSynthesizer(cfg.HuggingFace, client)
		default:
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, withTimeout(s, cfg))
	}
	if len(providers) == 0 {
		log.Warn("no tts provider configured; audio is unavailable")
	}

	var synth Synthesizer = NewChain(log, providers...)

	var tiers Tiered
	closeFn := func() error { return nil }
	if cfg.Cache.Dir != "" {
		dc, err := NewDiskCache(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, err
		}
		tiers = append(tiers, dc)
	}
	if cfg.Cache.RedisAddr != "" {
		rc, err := NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			log.Warn("redis tts cache unavailable", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			tiers = append(tiers, rc)
			closeFn = rc.Close
		}
	}
	if len(tiers) > 0 {
		synth = WithCache(synth, tiers, log)
	}
	return synth, closeFn, nil
}

type timeoutSynthesizer struct {
	Synthesizer
	cfg Config
}

func withTimeout(s Synthesizer, cfg Config) Synthesizer {
	if cfg.Timeout <= 0 {
		return s
	}
	return &timeoutSynthesizer{Synthesizer: s, cfg: cfg}
}

func (t *timeoutSynthesizer) Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()
	return t.Synthesizer.Synthesize(ctx, text, l)
}
