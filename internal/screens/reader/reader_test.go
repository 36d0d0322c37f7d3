package reader

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screens/summary"
	"github.com/abhisek/lasi/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	parts api.Parts
	words []api.WordTiming
}

func (f *fakeBackend) Parts(context.Context, string, lang.Language) (api.Parts, error) {
	return f.parts, nil
}

func (f *fakeBackend) Simplify(_ context.Context, req api.SimplifyRequest) (string, error) {
	return "Simple. " + req.Text, nil
}

func (f *fakeBackend) Format(_ context.Context, req api.FormatRequest) (string, error) {
	return req.Text, nil
}

func (f *fakeBackend) Questions(_ context.Context, req api.QuestionsRequest) ([]string, error) {
	return []string{"Who is in the story?"}, nil
}

func (f *fakeBackend) QuestionsBatch(_ context.Context, req api.BatchQuestionsRequest) (map[int][]string, *api.BatchQuestionsResponse, error) {
	out := make(map[int][]string, len(req.Fragments))
	for i := range req.Fragments {
		out[i] = []string{"What happens?"}
	}
	return out, &api.BatchQuestionsResponse{TotalFragments: len(req.Fragments), TotalAPICalls: 1}, nil
}

func (f *fakeBackend) Evaluate(_ context.Context, req api.EvaluateRequest) (*api.EvaluateResponse, error) {
	if req.Answer == "wait" {
		return &api.EvaluateResponse{RateLimited: true, WaitTime: 3}, nil
	}
	return &api.EvaluateResponse{
		Feedback:       "Good reading.",
		CorrectSnippet: "a small cat",
		Correct:        req.Answer == "the cat",
	}, nil
}

func (f *fakeBackend) Audio(context.Context, api.AudioRequest) (*apiclient.Audio, error) {
	return &apiclient.Audio{Data: []byte("mp3"), MIME: "audio/mpeg", Words: f.words}, nil
}

func newReader(t *testing.T, parts api.Parts) (*ReaderScreen, *session.Orchestrator, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{parts: parts}
	st := session.NewState(lang.English, gateway.DifficultyStandard, gateway.LevelDefault, gateway.StrictnessBalanced)
	orch := session.NewOrchestrator(b, st, "tester", nil)
	require.NoError(t, orch.SelectText(context.Background(), "Cats"))
	return New(orch, Options{}), orch, b
}

func twoParts() api.Parts {
	return api.Parts{
		{Name: "One", Text: "There was a small cat in the garden."},
		{Name: "Two", Text: "The cat found a ball and played all day."},
	}
}

// settle runs cmd and feeds every resulting message back into the screen,
// skipping the spinner. It returns the messages the screen did not own.
func settle(t *testing.T, r *ReaderScreen, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var rest []tea.Msg
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			rest = append(rest, settle(t, r, c)...)
		}
	case spinnerTickMsg:
	case actionDoneMsg:
		_, next := r.Update(msg)
		rest = append(rest, settle(t, r, next)...)
	case nil:
	default:
		rest = append(rest, msg)
	}
	return rest
}

func press(r *ReaderScreen, code rune) tea.Cmd {
	_, cmd := r.Update(tea.KeyPressMsg{Code: code, Text: string(code)})
	return cmd
}

func pressKey(r *ReaderScreen, code rune) tea.Cmd {
	_, cmd := r.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func typeText(r *ReaderScreen, s string) {
	for _, c := range s {
		press(r, c)
	}
}

func TestShowsFirstPart(t *testing.T) {
	r, _, _ := newReader(t, twoParts())

	view := r.View(100, 30)
	assert.Contains(t, view, "small cat")
	assert.Contains(t, view, "One")
	assert.Contains(t, view, "Press q")
	assert.Equal(t, "Cats", r.Title())
	assert.Equal(t, "en  ✓0 ✗0", r.Status())
}

func TestPartNavigation(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())

	pressKey(r, tea.KeyRight)
	assert.Equal(t, 1, orch.Snapshot().PartIndex)

	pressKey(r, tea.KeyRight)
	assert.Equal(t, 1, orch.Snapshot().PartIndex, "stays on the last part")

	press(r, '1')
	assert.Equal(t, 0, orch.Snapshot().PartIndex)

	press(r, '9')
	assert.Equal(t, 0, orch.Snapshot().PartIndex)
}

func TestAnswerCorrectly(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())

	settle(t, r, press(r, 'q'))
	require.Equal(t, session.PhaseQuestionsLoaded, orch.Snapshot().Phase)
	assert.Contains(t, r.View(100, 30), "Question 1/1")

	press(r, 'a')
	require.True(t, r.answering)
	assert.True(t, r.InterceptEscape())
	typeText(r, "the cat")
	settle(t, r, pressKey(r, tea.KeyEnter))

	st := orch.Snapshot()
	assert.Equal(t, session.PhaseAnswerSubmitted, st.Phase)
	assert.Equal(t, 1, st.Score.Correct)
	assert.False(t, r.answering)
	assert.True(t, r.input.Submitted())

	view := r.View(100, 30)
	assert.Contains(t, view, "Correct!")
	assert.Contains(t, view, "Good reading.")
	assert.Equal(t, "en  ✓1 ✗0", r.Status())
}

func TestEscapeLeavesAnswerInput(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())
	settle(t, r, press(r, 'q'))
	press(r, 'a')

	pressKey(r, tea.KeyEscape)
	assert.False(t, r.answering)
	assert.False(t, r.InterceptEscape())
	assert.Equal(t, session.PhaseQuestionsLoaded, orch.Snapshot().Phase)
}

func TestRateLimitedAnswerCanBeRetried(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())
	settle(t, r, press(r, 'q'))
	press(r, 'a')
	typeText(r, "wait")
	settle(t, r, pressKey(r, tea.KeyEnter))

	st := orch.Snapshot()
	assert.Equal(t, session.OutcomeRateLimited, st.Outcome)
	assert.Equal(t, 0, st.Score.Answered())
	assert.False(t, r.input.Submitted())
	assert.Contains(t, r.View(100, 30), "wait a moment")

	press(r, 'a')
	assert.True(t, r.answering)
}

func TestFinishingPushesSummary(t *testing.T) {
	r, orch, _ := newReader(t, api.Parts{{Name: "Only", Text: "A small cat sat."}})
	settle(t, r, press(r, 'q'))
	press(r, 'a')
	typeText(r, "a dog")
	settle(t, r, pressKey(r, tea.KeyEnter))
	require.Equal(t, 1, orch.Snapshot().Score.Incorrect)

	msgs := settle(t, r, press(r, 'n'))
	require.Len(t, msgs, 1)
	push, ok := msgs[0].(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Summary", push.Screen.Title())

	_, _ = r.Update(summary.StartOverMsg{})
	st := orch.Snapshot()
	assert.Equal(t, session.PhaseQuestionsLoaded, st.Phase)
	assert.Equal(t, 0, st.Score.Answered())
}

func TestBatchMarksEveryTab(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())

	settle(t, r, press(r, 'b'))

	st := orch.Snapshot()
	assert.True(t, st.HasQuestions(0))
	assert.True(t, st.HasQuestions(1))
	view := r.View(100, 30)
	assert.Contains(t, view, "One ✓")
	assert.Contains(t, view, "Two ✓")
	assert.Contains(t, view, "Questions ready for 2 parts")
}

func TestSecondRequestWhileBusy(t *testing.T) {
	r, _, _ := newReader(t, twoParts())

	first := press(r, 'q')
	require.NotNil(t, first)
	assert.Nil(t, press(r, 'q'))
	assert.NotEmpty(t, r.errMsg)

	settle(t, r, first)
	assert.Empty(t, r.pending)
}

func TestSimplifyToggle(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())

	settle(t, r, press(r, 's'))
	assert.Equal(t, session.ModeSimplified, orch.Snapshot().Mode)
	assert.Contains(t, r.View(100, 30), "Simple.")

	settle(t, r, press(r, 's'))
	assert.Equal(t, session.ModeOriginal, orch.Snapshot().Mode)
}

func TestReadingAids(t *testing.T) {
	r, _, _ := newReader(t, twoParts())

	press(r, 'u')
	assert.Contains(t, r.View(100, 30), "SMALL CAT")

	press(r, 'r')
	assert.Contains(t, r.View(100, 30), "▶")

	press(r, '+')
	press(r, '+')
	press(r, '+')
	assert.Equal(t, maxSpacing, r.spacing)
	press(r, '-')
	assert.Equal(t, maxSpacing-1, r.spacing)
}

func TestSettingsKeysCycle(t *testing.T) {
	r, orch, _ := newReader(t, twoParts())

	press(r, 'd')
	assert.Equal(t, gateway.DifficultyEasy, orch.Snapshot().Difficulty)
	press(r, 'e')
	assert.Equal(t, gateway.StrictnessStrict, orch.Snapshot().Strictness)
	press(r, 'e')
	assert.Equal(t, gateway.StrictnessGentle, orch.Snapshot().Strictness)
	press(r, 'v')
	assert.Equal(t, gateway.LevelDeep, orch.Snapshot().Level)
}

func TestSilentNarrationHighlightsWords(t *testing.T) {
	r, _, b := newReader(t, twoParts())
	b.words = []api.WordTiming{
		{Word: "There", Start: 0, End: 0.01},
		{Word: "was", Start: 0.01, End: 0.02},
	}

	cmd := press(r, 'p')
	var rest []tea.Msg
	for _, c := range cmd().(tea.BatchMsg) {
		if msg, ok := c().(actionDoneMsg); ok {
			_, play := r.Update(msg)
			require.NotNil(t, play)
			rest = append(rest, play)
		}
	}
	require.NotNil(t, r.audio)
	assert.True(t, r.InterceptEscape())
	assert.Contains(t, r.View(100, 30), "listening")

	pressKey(r, tea.KeyEscape)
	assert.Nil(t, r.audio)
	assert.Equal(t, -1, r.word)
	assert.Len(t, rest, 1)
}

func TestEmptyText(t *testing.T) {
	r, _, _ := newReader(t, api.Parts{})
	assert.True(t, strings.Contains(r.View(100, 30), "Nothing to read"))
}
