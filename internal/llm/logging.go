package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/store"
)

// maxCapturedBody caps each stored request or response body. Whole
// reading passages travel in prompts and would bloat the event log.
const maxCapturedBody = 32 << 10

// LoggingProvider records each call in the event log and the server log.
type LoggingProvider struct {
	inner Provider
	name  string
	repo  store.EventRepo
	log   *logger.Logger
}

// WithLogging wraps p. repo and log may be nil.
func WithLogging(p Provider, name string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, name: name, repo: repo, log: log}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(ctx, req, resp, err, time.Since(start))

	kv := []any{
		"provider", ev.Provider,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs,
		"input_tokens", ev.InputTokens,
		"output_tokens", ev.OutputTokens,
	}
	if err != nil {
		l.log.Warn("llm call failed", append(kv, "error", err)...)
	} else {
		l.log.Info("llm call", kv...)
	}

	if l.repo != nil {
		// Recording must outlive a cancelled request.
		if rerr := l.repo.AppendLLMRequest(context.WithoutCancel(ctx), ev); rerr != nil {
			l.log.Warn("record llm call", "error", rerr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) event(ctx context.Context, req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: capBody(transcript(req)),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = capBody(string(resp.Content))
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	return ev
}

// transcript renders a request the way `lasi llm view` shows it.
func transcript(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		b.WriteString("[" + label + "]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func capBody(s string) string {
	if len(s) <= maxCapturedBody {
		return s
	}
	cut := maxCapturedBody
	// Back up to a rune boundary.
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "\n[truncated]"
}
