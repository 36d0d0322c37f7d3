// Package gateway turns reading-comprehension requests into LLM and speech
// calls and normalizes what comes back.
//
// Every operation is stateless apart from the per-user evaluation rate
// limiter. Provider failures and malformed replies are reported as
// ErrUpstream; bad caller input as ErrInvalidInput. Nothing is retried.
package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lasi/internal/llm"
	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/tts"
)

var (
	// ErrInvalidInput marks requests rejected before any provider call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream marks provider failures and replies that did not decode
	// or validate.
	ErrUpstream = errors.New("upstream error")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

// Options tunes the gateway. Zero values fall back to DefaultOptions.
type Options struct {
	// BatchGroupSize is how many fragments share one batch LLM call.
	BatchGroupSize int
	// MaxConcurrency bounds concurrent LLM calls within one batch.
	MaxConcurrency int

	EvalCapacity    int
	EvalRefill      float64 // tokens per second
	EvalIdleTTL     time.Duration
	MaxSimplifyRune int

	// Timings is the tts timing mode: provider, estimate or off.
	Timings string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		BatchGroupSize:  3,
		MaxConcurrency:  4,
		EvalCapacity:    8,
		EvalRefill:      0.15,
		EvalIdleTTL:     30 * time.Minute,
		MaxSimplifyRune: 15000,
		Timings:         tts.TimingsProvider,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchGroupSize <= 0 {
		o.BatchGroupSize = d.BatchGroupSize
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = d.MaxConcurrency
	}
	if o.EvalCapacity <= 0 {
		o.EvalCapacity = d.EvalCapacity
	}
	if o.EvalRefill <= 0 {
		o.EvalRefill = d.EvalRefill
	}
	if o.EvalIdleTTL <= 0 {
		o.EvalIdleTTL = d.EvalIdleTTL
	}
	if o.MaxSimplifyRune <= 0 {
		o.MaxSimplifyRune = d.MaxSimplifyRune
	}
	if o.Timings == "" {
		o.Timings = d.Timings
	}
	return o
}

// Gateway is the AI facade used by the HTTP server.
type Gateway struct {
	provider llm.Provider
	speech   tts.Synthesizer
	limiter  *userLimiter
	opts     Options
	log      *logger.Logger
}

// New creates a Gateway. speech may be nil, in which case audio requests
// fail with ErrUpstream.
func New(provider llm.Provider, speech tts.Synthesizer, opts Options, log *logger.Logger) *Gateway {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{
		provider: provider,
		speech:   speech,
		limiter:  newUserLimiter(opts.EvalCapacity, opts.EvalRefill, opts.EvalIdleTTL, time.Now),
		opts:     opts,
		log:      log.With("component", "gateway"),
	}
}
