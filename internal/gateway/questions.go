package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/llm"
)

const maxPreviousQuestions = 12

// QuestionsInput asks for questions about one fragment.
type QuestionsInput struct {
	Fragment          string
	PreviousQuestions []string
	Language          lang.Language
	Difficulty        Difficulty
}

// BatchInput asks for questions about every fragment of a text.
type BatchInput struct {
	TextName   string
	Fragments  []string
	Language   lang.Language
	Difficulty Difficulty
}

// BatchResult maps fragment index to its questions.
type BatchResult struct {
	ByFragment     map[int][]string
	TotalFragments int
	TotalAPICalls  int
}

type questionsOutput struct {
	Questions []string `json:"questions"`
}

type batchOutput struct {
	Fragments []struct {
		Index     int      `json:"index"`
		Questions []string `json:"questions"`
	} `json:"fragments"`
}

// Questions generates comprehension questions for one fragment. Previous
// questions are passed as a hint to avoid repeats.
func (g *Gateway) Questions(ctx context.Context, in QuestionsInput) ([]string, error) {
	if strings.TrimSpace(in.Fragment) == "" {
		return nil, invalidf("fragment is empty")
	}
	if !in.Difficulty.Valid() {
		in.Difficulty = DifficultyStandard
	}
	return g.questions(ctx, in)
}

func (g *Gateway) questions(ctx context.Context, in QuestionsInput) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System: questionsSystemPrompt(in.Language, in.Difficulty),
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: questionsPrompt(in.Fragment, questionCount(in.Fragment), in.PreviousQuestions),
		}},
		Schema:      QuestionsSchema,
		MaxTokens:   512,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, upstream("questions", err)
	}

	var out questionsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, upstream("questions", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	qs := cleanQuestions(out.Questions)
	if len(qs) == 0 {
		return nil, upstream("questions", &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("no questions in reply"),
		})
	}
	return qs, nil
}

// QuestionsBatch generates questions for all fragments, sharing one LLM
// call between up to BatchGroupSize fragments. Fragments a group reply
// leaves out are asked for individually. Any failed call fails the batch.
func (g *Gateway) QuestionsBatch(ctx context.Context, in BatchInput) (*BatchResult, error) {
	if len(in.Fragments) == 0 {
		return nil, invalidf("no fragments")
	}
	for i, f := range in.Fragments {
		if strings.TrimSpace(f) == "" {
			return nil, invalidf("fragment %d is empty", i)
		}
	}
	if !in.Difficulty.Valid() {
		in.Difficulty = DifficultyStandard
	}

	results := make([][]string, len(in.Fragments))
	var calls atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.MaxConcurrency)
	for start := 0; start < len(in.Fragments); start += g.opts.BatchGroupSize {
		end := min(start+g.opts.BatchGroupSize, len(in.Fragments))
		eg.Go(func() error {
			return g.batchGroup(egCtx, in, start, end, results, &calls)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &BatchResult{
		ByFragment:     make(map[int][]string, len(results)),
		TotalFragments: len(in.Fragments),
		TotalAPICalls:  int(calls.Load()),
	}
	for i, qs := range results {
		res.ByFragment[i] = qs
	}
	g.log.Info("batch questions generated",
		"text", in.TextName,
		"fragments", res.TotalFragments,
		"api_calls", res.TotalAPICalls,
	)
	return res, nil
}

// batchGroup fills results[start:end]. Each slot is written by exactly one
// goroutine.
func (g *Gateway) batchGroup(ctx context.Context, in BatchInput, start, end int, results [][]string, calls *atomic.Int64) error {
	indexes := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indexes = append(indexes, i)
	}

	if len(indexes) > 1 {
		calls.Add(1)
		got, err := g.batchCall(ctx, in, indexes)
		if err != nil {
			return err
		}
		for idx, qs := range got {
			results[idx] = qs
		}
	}

	for _, idx := range indexes {
		if results[idx] != nil {
			continue
		}
		calls.Add(1)
		qs, err := g.questions(ctx, QuestionsInput{
			Fragment:   in.Fragments[idx],
			Language:   in.Language,
			Difficulty: in.Difficulty,
		})
		if err != nil {
			return fmt.Errorf("fragment %d: %w", idx, err)
		}
		results[idx] = qs
	}
	return nil
}

func (g *Gateway) batchCall(ctx context.Context, in BatchInput, indexes []int) (map[int][]string, error) {
	fragments := make([]string, len(indexes))
	for i, idx := range indexes {
		fragments[i] = in.Fragments[idx]
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionsBatch)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      questionsSystemPrompt(in.Language, in.Difficulty),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: batchPrompt(fragments, indexes)}},
		Schema:      BatchQuestionsSchema,
		MaxTokens:   512 * len(indexes),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, upstream("questions batch", err)
	}

	var out batchOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, upstream("questions batch", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}

	wanted := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		wanted[idx] = true
	}
	got := make(map[int][]string, len(indexes))
	for _, f := range out.Fragments {
		if !wanted[f.Index] {
			continue
		}
		if qs := cleanQuestions(f.Questions); len(qs) > 0 {
			got[f.Index] = qs
		}
	}
	return got, nil
}

func cleanQuestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
