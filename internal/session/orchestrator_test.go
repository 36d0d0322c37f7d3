package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/config"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/llm"
	"github.com/abhisek/lasi/internal/server"
	"github.com/abhisek/lasi/internal/splitter"
	"github.com/abhisek/lasi/internal/store"
	"github.com/abhisek/lasi/internal/textstore"
)

type fakeBackend struct {
	mu sync.Mutex

	parts     api.Parts
	simplify  func(api.SimplifyRequest) (string, error)
	questions func(api.QuestionsRequest) ([]string, error)
	batch     func(api.BatchQuestionsRequest) (map[int][]string, error)
	evaluate  func(api.EvaluateRequest) (*api.EvaluateResponse, error)

	// gate, when set, blocks calls until closed.
	gate chan struct{}
	reqs []any
}

func (f *fakeBackend) record(req any) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeBackend) Parts(_ context.Context, name string, _ lang.Language) (api.Parts, error) {
	if name == "missing" {
		return nil, &apiclient.NotFound{Message: name}
	}
	return f.parts, nil
}

func (f *fakeBackend) Simplify(_ context.Context, req api.SimplifyRequest) (string, error) {
	f.record(req)
	return f.simplify(req)
}

func (f *fakeBackend) Format(_ context.Context, req api.FormatRequest) (string, error) {
	f.record(req)
	return strings.Join(strings.Fields(req.Text), " "), nil
}

func (f *fakeBackend) Questions(_ context.Context, req api.QuestionsRequest) ([]string, error) {
	f.record(req)
	return f.questions(req)
}

func (f *fakeBackend) QuestionsBatch(_ context.Context, req api.BatchQuestionsRequest) (map[int][]string, *api.BatchQuestionsResponse, error) {
	f.record(req)
	m, err := f.batch(req)
	if err != nil {
		return nil, nil, err
	}
	return m, &api.BatchQuestionsResponse{TotalFragments: len(req.Fragments), TotalAPICalls: 1}, nil
}

func (f *fakeBackend) Evaluate(_ context.Context, req api.EvaluateRequest) (*api.EvaluateResponse, error) {
	f.record(req)
	return f.evaluate(req)
}

func (f *fakeBackend) Audio(_ context.Context, req api.AudioRequest) (*apiclient.Audio, error) {
	f.record(req)
	return &apiclient.Audio{Data: []byte("mp3"), MIME: "audio/mpeg"}, nil
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		parts: testParts(),
		simplify: func(r api.SimplifyRequest) (string, error) {
			return "Simple: " + r.Text, nil
		},
		questions: func(r api.QuestionsRequest) ([]string, error) {
			return []string{"About " + r.Fragment + "?"}, nil
		},
		batch: func(r api.BatchQuestionsRequest) (map[int][]string, error) {
			out := make(map[int][]string, len(r.Fragments))
			for i, f := range r.Fragments {
				out[i] = []string{"About " + f + "?"}
			}
			return out, nil
		},
		evaluate: func(r api.EvaluateRequest) (*api.EvaluateResponse, error) {
			return &api.EvaluateResponse{Feedback: "ok", Correct: r.Answer == "right"}, nil
		},
	}
}

func newTestOrchestrator(t *testing.T, b Backend) *Orchestrator {
	t.Helper()
	st := NewState(lang.English, gateway.DifficultyStandard, gateway.LevelDefault, gateway.StrictnessBalanced)
	o := NewOrchestrator(b, st, "user-1", nil)
	require.NoError(t, o.SelectText(context.Background(), "Pets"))
	return o
}

func TestOrchestrator_SelectTextNotFound(t *testing.T) {
	st := NewState(lang.English, gateway.DifficultyStandard, gateway.LevelDefault, gateway.StrictnessBalanced)
	o := NewOrchestrator(newFakeBackend(), st, "", nil)

	err := o.SelectText(context.Background(), "missing")
	var nf *apiclient.NotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, PhaseIdle, o.Snapshot().Phase)
}

func TestOrchestrator_QuestionsAndAnswer(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	ctx := context.Background()

	require.NoError(t, o.GenerateQuestions(ctx))
	snap := o.Snapshot()
	assert.Equal(t, PhaseQuestionsLoaded, snap.Phase)
	assert.Equal(t, []string{"About The cat sat on the mat.?"}, snap.Questions)

	ev, err := o.Submit(ctx, "right")
	require.NoError(t, err)
	assert.True(t, ev.Correct)

	snap = o.Snapshot()
	assert.Equal(t, 1, snap.Score.Correct)
	assert.Equal(t, PartScore{Correct: 1}, snap.Score.PerPart["Part 1"])
	assert.Equal(t, OutcomeCorrect, snap.Outcome)

	req := b.reqs[len(b.reqs)-1].(api.EvaluateRequest)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, 2, req.Strictness)
}

func TestOrchestrator_PreviousQuestionsSent(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	ctx := context.Background()

	require.NoError(t, o.GenerateQuestions(ctx))
	require.NoError(t, o.GenerateQuestions(ctx))
	req := b.reqs[len(b.reqs)-1].(api.QuestionsRequest)
	assert.Equal(t, []string{"About The cat sat on the mat.?"}, req.PreviousQuestions)
}

func TestOrchestrator_RateLimitedAnswer(t *testing.T) {
	b := newFakeBackend()
	b.evaluate = func(api.EvaluateRequest) (*api.EvaluateResponse, error) {
		return &api.EvaluateResponse{Feedback: "wait", Correct: true, RateLimited: true, WaitTime: 3}, nil
	}
	o := newTestOrchestrator(t, b)
	ctx := context.Background()
	require.NoError(t, o.GenerateQuestions(ctx))

	ev, err := o.Submit(ctx, "right")
	require.NoError(t, err)
	assert.True(t, ev.RateLimited)
	assert.False(t, ev.Correct)

	snap := o.Snapshot()
	assert.Zero(t, snap.Score.Correct)
	assert.Zero(t, snap.Score.Incorrect)
	assert.Equal(t, OutcomeRateLimited, snap.Outcome)
}

func TestOrchestrator_FailuresLeaveStateUnchanged(t *testing.T) {
	b := newFakeBackend()
	boom := &apiclient.UpstreamError{Status: 502, Message: "boom"}
	b.simplify = func(api.SimplifyRequest) (string, error) { return "", boom }
	b.questions = func(api.QuestionsRequest) ([]string, error) { return nil, boom }
	b.batch = func(api.BatchQuestionsRequest) (map[int][]string, error) { return nil, boom }
	o := newTestOrchestrator(t, b)
	ctx := context.Background()
	before := o.Snapshot()

	assert.ErrorIs(t, o.ToggleSimplified(ctx), boom)
	assert.ErrorIs(t, o.GenerateQuestions(ctx), boom)
	_, err := o.GenerateBatch(ctx)
	assert.ErrorIs(t, err, boom)

	after := o.Snapshot()
	assert.Equal(t, ModeOriginal, after.Mode)
	assert.Equal(t, before.CurrentText(), after.CurrentText())
	assert.Empty(t, after.Questions)
	assert.False(t, after.HasQuestions(1))

	_, err = o.Submit(ctx, "x")
	assert.ErrorIs(t, err, ErrNoQuestion)
}

func TestOrchestrator_SimplifyCachedOnce(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	ctx := context.Background()

	require.NoError(t, o.ToggleSimplified(ctx))
	assert.Equal(t, "Simple: The cat sat on the mat.", o.Snapshot().CurrentText())
	require.NoError(t, o.ToggleSimplified(ctx))
	assert.Equal(t, "The cat sat on the mat.", o.Snapshot().CurrentText())
	require.NoError(t, o.ToggleSimplified(ctx))
	assert.Equal(t, ModeSimplified, o.Snapshot().Mode)

	assert.Len(t, b.reqs, 1, "simplify should be called once")
}

func TestOrchestrator_Format(t *testing.T) {
	b := newFakeBackend()
	b.parts = api.Parts{{Name: "Part 1", Text: "The  cat\n sat."}}
	o := newTestOrchestrator(t, b)

	require.NoError(t, o.Format(context.Background()))
	assert.Equal(t, "The cat sat.", o.Snapshot().CurrentText())
}

func TestOrchestrator_BatchShortCircuitsPartSwitch(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	ctx := context.Background()

	stats, err := o.GenerateBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFragments)

	o.SelectPart(1)
	snap := o.Snapshot()
	assert.Equal(t, PhaseQuestionsLoaded, snap.Phase)
	assert.Equal(t, []string{"About The dog ran in the park.?"}, snap.Questions)
	assert.Len(t, b.reqs, 1, "part switch after batch must not call the backend")
}

func TestOrchestrator_BusyGuard(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	b.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- o.GenerateQuestions(context.Background()) }()

	require.Eventually(t, func() bool { return o.Busy(ActionQuestions) }, time.Second, time.Millisecond)
	assert.ErrorIs(t, o.GenerateQuestions(context.Background()), ErrBusy)

	close(b.gate)
	require.NoError(t, <-done)
	assert.False(t, o.Busy(ActionQuestions))
}

func TestOrchestrator_StaleResultDiscarded(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)
	b.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- o.GenerateQuestions(context.Background()) }()
	require.Eventually(t, func() bool { return o.Busy(ActionQuestions) }, time.Second, time.Millisecond)

	// switching text while the request is in flight
	o.update(func(s *State) { s.SelectText("Other", testParts()) })
	close(b.gate)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.False(t, o.Snapshot().HasQuestions(0))
}

func TestOrchestrator_BatchKeepsRequestDifficulty(t *testing.T) {
	b := newFakeBackend()
	b.batch = func(r api.BatchQuestionsRequest) (map[int][]string, error) {
		return map[int][]string{0: {"q-for-" + r.Difficulty}, 1: {"q-for-" + r.Difficulty}}, nil
	}
	o := newTestOrchestrator(t, b)
	b.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := o.GenerateBatch(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return o.Busy(ActionBatch) }, time.Second, time.Millisecond)

	o.SetDifficulty(gateway.DifficultyEasy)
	close(b.gate)
	require.NoError(t, <-done)

	snap := o.Snapshot()
	assert.Equal(t, gateway.DifficultyEasy, snap.Difficulty)
	assert.Empty(t, snap.Questions, "standard questions must not show under easy")
	assert.False(t, snap.HasQuestions(0))

	o.SetDifficulty(gateway.DifficultyStandard)
	snap = o.Snapshot()
	assert.Equal(t, []string{"q-for-standard"}, snap.Questions)
	assert.True(t, snap.HasQuestions(1))
}

func TestOrchestrator_Narrate(t *testing.T) {
	b := newFakeBackend()
	o := newTestOrchestrator(t, b)

	a, err := o.Narrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", a.MIME)
	assert.Equal(t, "The cat sat on the mat.", b.reqs[0].(api.AudioRequest).Text)
}

// End to end over HTTP: a text split into two parts has no questions for
// part 2 until batch generation runs.
func TestOrchestrator_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	split := splitter.New(splitter.Options{DefaultTargetTokens: 4, Metric: splitter.MetricWords})
	texts := textstore.New(nil, st.TextRepo(), split, nil)
	mock := llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		if req.Schema != nil && req.Schema.Name == gateway.BatchQuestionsSchema.Name {
			return llm.MockResponse{Content: json.RawMessage(
				`{"fragments":[{"index":0,"questions":["Q0?"]},{"index":1,"questions":["Q1?"]}]}`)}
		}
		return llm.MockResponse{Err: errors.New("unexpected call")}
	})
	gw := gateway.New(mock, nil, gateway.DefaultOptions(), nil)
	srv := server.New(config.DefaultConfig().Server, texts, gw, nil, "v0.0.0-test")
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	client := apiclient.New(hs.URL)
	ctx := context.Background()

	frags, err := client.Preview(ctx, "A B C D E F G H", 4)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.Equal(t, "A B C D E F G H", strings.Join(frags, " "))

	_, err = client.Upload(ctx, api.UploadTextRequest{Name: "Letters", Language: "English", Text: "A B C D E F G H", FragmentTargetTokens: 4})
	require.NoError(t, err)

	o := NewOrchestrator(client, NewState(lang.English, gateway.DifficultyStandard, gateway.LevelDefault, gateway.StrictnessBalanced), "", nil)
	require.NoError(t, o.SelectText(ctx, "Letters"))
	o.SelectPart(1)
	snap := o.Snapshot()
	assert.Equal(t, "Part 2", snap.CurrentPart())
	assert.Empty(t, snap.Questions)

	_, err = o.GenerateBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1?"}, o.Snapshot().Questions)
	assert.Equal(t, 1, mock.CallCount())
}
