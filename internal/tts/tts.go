// Package tts turns text into speech audio with per-word timings.
//
// Providers are tried in order by Chain; the first one that returns audio
// wins. Timings are taken from the provider when it reports them for every
// word, and estimated from speaking speed and punctuation pauses otherwise.
package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
)

var (
	// ErrNoProvider is returned when no speech provider is configured.
	ErrNoProvider = errors.New("tts: no speech provider configured")

	// ErrEmptyText is returned for text with nothing to say.
	ErrEmptyText = errors.New("tts: empty text")

	// ErrSynthesis is returned when every provider failed.
	ErrSynthesis = errors.New("tts: synthesis failed")
)

// Result is synthesized audio.
type Result struct {
	Audio   []byte       `json:"audio"`
	MIME    string       `json:"mime"`
	Timings []WordTiming `json:"timings,omitempty"`
}

// Synthesizer produces audio for cleaned text in a language.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error)
	Name() string
}

// Chain tries each synthesizer in turn.
type Chain struct {
	providers []Synthesizer
	log       *logger.Logger
}

// NewChain returns a chain over providers. A nil log discards output.
func NewChain(log *logger.Logger, providers ...Synthesizer) *Chain {
	if log == nil {
		log = logger.Nop()
	}
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProvider
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var errs []error
	for _, p := range c.providers {
		res, err := p.Synthesize(ctx, text, l)
		if err == nil && res != nil && len(res.Audio) > 0 {
			return res, nil
		}
		if err == nil {
			err = errors.New("empty audio")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("tts provider failed", "provider", p.Name(), "language", string(l), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, fmt.Errorf("%w: %w", ErrSynthesis, errors.Join(errs...))
}
