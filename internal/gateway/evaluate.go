package gateway

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/llm"
)

const (
	maxSnippetWords = 25
	maxSnippetRunes = 250

	// providerRetryDefault is the wait reported when the provider rate
	// limits without saying for how long.
	providerRetryDefault = 10 * time.Second
)

// EvaluateInput is one answer to grade.
type EvaluateInput struct {
	Fragment   string
	Question   string
	Answer     string
	Language   lang.Language
	UserID     string
	Strictness Strictness
}

// Evaluation is the verdict on one answer. A rate-limited evaluation is
// never correct and must not be scored.
type Evaluation struct {
	Feedback       string  `json:"feedback"`
	CorrectSnippet string  `json:"correct_snippet"`
	Correct        bool    `json:"correct"`
	RateLimited    bool    `json:"rate_limited"`
	WaitTime       float64 `json:"wait_time,omitempty"`
}

// Evaluate grades an answer. Each user has a token bucket; when it is
// empty the result is rate limited and no provider call is made.
func (g *Gateway) Evaluate(ctx context.Context, in EvaluateInput) (*Evaluation, error) {
	if strings.TrimSpace(in.Fragment) == "" || strings.TrimSpace(in.Question) == "" {
		return nil, invalidf("fragment and question are required")
	}
	strictness := ParseStrictness(int(in.Strictness))

	if ok, wait := g.limiter.allow(strings.TrimSpace(in.UserID)); !ok {
		g.log.Info("evaluation rate limited", "user_id", in.UserID, "wait_s", wait.Seconds())
		return &Evaluation{
			Feedback:    lang.Text(in.Language, lang.MsgRateLimited),
			RateLimited: true,
			WaitTime:    wait.Seconds(),
		}, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluate)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System: evaluateSystemPrompt(in.Language, strictness),
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: evaluatePrompt(in.Fragment, in.Question, in.Answer),
		}},
		Schema:      EvaluationSchema,
		MaxTokens:   512,
		Temperature: 0.7,
	})
	if wait, limited := llm.RetryAfter(err); limited {
		// The provider's own quota is out. The reader sees the same
		// result as for the per-user bucket.
		if wait <= 0 {
			wait = providerRetryDefault
		}
		g.log.Warn("evaluation provider rate limited", "user_id", in.UserID, "wait_s", wait.Seconds())
		return &Evaluation{
			Feedback:    lang.Text(in.Language, lang.MsgRateLimited),
			RateLimited: true,
			WaitTime:    wait.Seconds(),
		}, nil
	}
	if err != nil {
		return nil, upstream("evaluate", err)
	}

	var ev Evaluation
	if err := json.Unmarshal(resp.Content, &ev); err != nil {
		return nil, upstream("evaluate", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	ev.Feedback = strings.TrimSpace(ev.Feedback)
	ev.CorrectSnippet = trimSnippet(ev.CorrectSnippet)
	ev.RateLimited = false
	ev.WaitTime = 0
	return &ev, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]`)

// trimSnippet shortens an overlong snippet to its first sentence and then
// to at most maxSnippetWords words.
func trimSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(strings.Fields(s)) <= maxSnippetWords && len([]rune(s)) <= maxSnippetRunes {
		return s
	}
	if loc := sentenceEnd.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[:loc[1]])
	}
	if words := strings.Fields(s); len(words) > maxSnippetWords {
		s = strings.Join(words[:maxSnippetWords], " ")
	}
	return s
}
