package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/llm"
)

// Simplify rewrites text for younger readers at the given level.
func (g *Gateway) Simplify(ctx context.Context, text string, l lang.Language, level Level) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalidf("text is empty")
	}
	if n := utf8.RuneCountInString(text); n > g.opts.MaxSimplifyRune {
		return "", invalidf("text longer than %d characters", g.opts.MaxSimplifyRune)
	}
	if !level.Valid() {
		level = LevelDefault
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeSimplify)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      pick(simplifySystem, l),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: simplifyPrompt(text, l, level)}},
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		return "", upstream("simplify", err)
	}

	out := strings.TrimSpace(string(resp.Content))
	if out == "" {
		return "", upstream("simplify", &llm.ErrInvalidResponse{Err: fmt.Errorf("empty text")})
	}
	return out, nil
}

type formatOutput struct {
	Text string `json:"text"`
}

// Format fixes punctuation, casing and paragraph breaks. The reply is
// rejected if its words differ from the input's.
func (g *Gateway) Format(ctx context.Context, text string, l lang.Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", invalidf("text is empty")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeFormat)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      formatSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: formatPrompt(text, l)}},
		Schema:      FormatSchema,
		MaxTokens:   4096,
		Temperature: 0.4,
	})
	if err != nil {
		return "", upstream("format", err)
	}

	var out formatOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", upstream("format", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	out.Text = strings.TrimSpace(out.Text)
	if !sameWording(text, out.Text) {
		return "", upstream("format", &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("formatter changed the wording"),
		})
	}
	return out.Text, nil
}

// sameWording compares the case-folded letters and digits of a and b.
func sameWording(a, b string) bool {
	return wording(a) == wording(b)
}

func wording(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}
