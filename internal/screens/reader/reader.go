// Package reader is the main reading screen: part tabs, the text with its
// reading aids, and the question panel.
package reader

import (
	"context"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/screens/summary"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/components"
	"github.com/abhisek/lasi/internal/ui/layout"
)

const (
	minSpacing = 1
	maxSpacing = 3
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Options configures the reader.
type Options struct {
	// AudioPlayer plays a file given as its last argument. Empty means
	// words are highlighted without sound.
	AudioPlayer string
}

// ReaderScreen implements screen.Screen for reading one text.
type ReaderScreen struct {
	orch *session.Orchestrator
	opts Options

	input     components.TextInput
	answering bool

	uppercase bool
	ruler     bool
	rulerLine int
	scroll    int
	spacing   int
	textLines int

	notice  string
	errMsg  string
	pending map[session.Action]bool
	spin    int

	audio    *playback
	audioGen int
	word     int

	summaryShown bool
}

var _ screen.Screen = (*ReaderScreen)(nil)
var _ screen.KeyHintProvider = (*ReaderScreen)(nil)
var _ screen.StatusProvider = (*ReaderScreen)(nil)
var _ screen.EscapeInterceptor = (*ReaderScreen)(nil)
var _ screen.Closer = (*ReaderScreen)(nil)

// New creates a reader over an orchestrator that already has a text.
func New(orch *session.Orchestrator, opts Options) *ReaderScreen {
	return &ReaderScreen{
		orch:    orch,
		opts:    opts,
		input:   components.NewTextInput("Type your answer...", 500),
		spacing: minSpacing,
		pending: make(map[session.Action]bool),
		word:    -1,
	}
}

func (r *ReaderScreen) Init() tea.Cmd {
	return nil
}

func (r *ReaderScreen) Title() string {
	return r.orch.Snapshot().TextName
}

func (r *ReaderScreen) Status() string {
	st := r.orch.Snapshot()
	return st.Language.Code() + "  ✓" + strconv.Itoa(st.Score.Correct) + " ✗" + strconv.Itoa(st.Score.Incorrect)
}

// InterceptEscape keeps Esc inside the screen while answering or narrating.
func (r *ReaderScreen) InterceptEscape() bool {
	return r.answering || r.audio != nil
}

func (r *ReaderScreen) KeyHints() []layout.KeyHint {
	if r.answering {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Back to text"},
		}
	}
	st := r.orch.Snapshot()
	hints := []layout.KeyHint{{Key: "←→", Description: "Part"}}
	switch st.Phase {
	case session.PhaseFragmentLoaded:
		hints = append(hints, layout.KeyHint{Key: "q", Description: "Questions"}, layout.KeyHint{Key: "b", Description: "All parts"})
	case session.PhaseQuestionsLoaded:
		hints = append(hints, layout.KeyHint{Key: "a", Description: "Answer"}, layout.KeyHint{Key: "q", Description: "New questions"})
	case session.PhaseAnswerSubmitted:
		hints = append(hints, layout.KeyHint{Key: "n", Description: "Next"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "s", Description: "Simplify"},
		layout.KeyHint{Key: "p", Description: "Listen"},
		layout.KeyHint{Key: "?", Description: "Keys"},
	)
	return hints
}

func (r *ReaderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		return r, r.handleActionDone(msg)

	case wordMsg:
		if r.audio == nil || msg.Gen != r.audio.gen || msg.Closed {
			return r, nil
		}
		r.word = msg.Index
		return r, r.audio.nextWord()

	case playbackDoneMsg:
		return r, r.handlePlaybackDone(msg)

	case spinnerTickMsg:
		if len(r.pending) == 0 {
			return r, nil
		}
		r.spin++
		return r, spinnerTick()

	case summary.StartOverMsg:
		r.orch.StartOver()
		r.summaryShown = false
		r.resetView()
		return r, nil

	case tea.KeyMsg:
		if r.answering {
			return r, r.handleAnswerKey(msg)
		}
		return r, r.handleKey(msg)
	}

	if r.answering {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *ReaderScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	st := r.orch.Snapshot()
	r.errMsg = ""

	switch key := msg.String(); key {
	case "esc":
		if r.audio != nil {
			r.stopAudio()
		}
		return nil

	case "left", "[":
		r.goToPart(st.PartIndex - 1)
	case "right", "]":
		r.goToPart(st.PartIndex + 1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		r.goToPart(int(key[0] - '1'))

	case "up", "k":
		r.moveLine(-1)
	case "down", "j":
		r.moveLine(1)

	case "q":
		return r.run(session.ActionQuestions, func(ctx context.Context) actionDoneMsg {
			return actionDoneMsg{Err: r.orch.GenerateQuestions(ctx)}
		})
	case "b":
		return r.run(session.ActionBatch, func(ctx context.Context) actionDoneMsg {
			stats, err := r.orch.GenerateBatch(ctx)
			return actionDoneMsg{Batch: stats, Err: err}
		})
	case "s":
		r.stopAudio()
		return r.run(session.ActionSimplify, func(ctx context.Context) actionDoneMsg {
			return actionDoneMsg{Err: r.orch.ToggleSimplified(ctx)}
		})
	case "f":
		return r.run(session.ActionFormat, func(ctx context.Context) actionDoneMsg {
			return actionDoneMsg{Err: r.orch.Format(ctx)}
		})

	case "d":
		r.orch.SetDifficulty(st.Difficulty.Next())
		r.notice = "Questions: " + string(r.orch.Snapshot().Difficulty)
	case "v":
		r.orch.SetLevel(st.Level.Next())
		r.notice = "Simplification: " + string(r.orch.Snapshot().Level)
		if st.Mode == session.ModeSimplified {
			r.orch.ShowOriginal()
		}
	case "e":
		r.orch.SetStrictness(st.Strictness%3 + 1)
		r.notice = "Strictness: " + strconv.Itoa(int(r.orch.Snapshot().Strictness))

	case "u":
		r.uppercase = !r.uppercase
	case "r":
		r.ruler = !r.ruler
	case "+", "=":
		r.spacing = min(r.spacing+1, maxSpacing)
	case "-":
		r.spacing = max(r.spacing-1, minSpacing)

	case "p":
		if r.audio != nil {
			r.stopAudio()
			return nil
		}
		return r.run(session.ActionAudio, func(ctx context.Context) actionDoneMsg {
			a, err := r.orch.Narrate(ctx)
			return actionDoneMsg{Audio: a, Err: err}
		})
	case "space":
		return r.togglePause()

	case "a", "enter":
		retry := st.Phase == session.PhaseAnswerSubmitted && st.Outcome == session.OutcomeRateLimited && key == "a"
		if st.Phase == session.PhaseQuestionsLoaded || retry {
			r.answering = true
			r.input.Reset()
			return r.input.Init()
		}
		if st.Phase == session.PhaseAnswerSubmitted && key == "enter" {
			return r.advance()
		}
	case "n":
		if st.Phase == session.PhaseAnswerSubmitted {
			return r.advance()
		}
	case "?":
		r.notice = "u upper · r ruler · +/- spacing · f format · d difficulty · v level · e strictness · space pause"
	}
	return nil
}

func (r *ReaderScreen) handleAnswerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		r.answering = false
		return nil
	case "enter":
		answer := r.input.Value()
		if answer == "" {
			return nil
		}
		r.answering = false
		return r.run(session.ActionEvaluate, func(ctx context.Context) actionDoneMsg {
			ev, err := r.orch.Submit(ctx, answer)
			return actionDoneMsg{Eval: ev, Err: err}
		})
	}
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return cmd
}

// run performs fn off the UI goroutine and starts the busy indicator.
func (r *ReaderScreen) run(a session.Action, fn func(ctx context.Context) actionDoneMsg) tea.Cmd {
	if r.pending[a] {
		r.errMsg = session.Message(r.orch.Snapshot().Language, session.ErrBusy)
		return nil
	}
	r.pending[a] = true
	r.notice = ""
	work := func() tea.Msg {
		msg := fn(context.Background())
		msg.Action = a
		return msg
	}
	if len(r.pending) == 1 {
		return tea.Batch(work, spinnerTick())
	}
	return work
}

func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (r *ReaderScreen) handleActionDone(msg actionDoneMsg) tea.Cmd {
	delete(r.pending, msg.Action)

	st := r.orch.Snapshot()
	if msg.Err != nil {
		r.errMsg = session.Message(st.Language, msg.Err)
		return nil
	}

	switch msg.Action {
	case session.ActionBatch:
		if msg.Batch != nil {
			r.notice = "Questions ready for " + strconv.Itoa(msg.Batch.TotalFragments) + " parts (" + strconv.Itoa(msg.Batch.TotalAPICalls) + " AI calls)"
		}
	case session.ActionEvaluate:
		// Rate-limited answers keep the input open for a retry.
		if msg.Eval != nil && !msg.Eval.RateLimited {
			r.input.Submit(msg.Eval.Correct)
		}
	case session.ActionSimplify, session.ActionFormat:
		r.resetView()
	case session.ActionAudio:
		if msg.Audio != nil {
			return r.play(msg.Audio)
		}
	}
	return nil
}

func (r *ReaderScreen) play(audio *apiclient.Audio) tea.Cmd {
	r.stopAudio()
	r.audioGen++
	p, err := startPlayback(r.audioGen, r.opts.AudioPlayer, audio)
	if err != nil {
		r.errMsg = err.Error()
		return nil
	}
	r.audio = p
	r.word = -1
	if len(audio.Words) == 0 && p.proc == nil {
		r.notice = "No word timings for this part"
	}
	return tea.Batch(p.nextWord(), p.waitDone())
}

func (r *ReaderScreen) handlePlaybackDone(msg playbackDoneMsg) tea.Cmd {
	if r.audio == nil || msg.Gen != r.audio.gen {
		return nil
	}
	if r.audio.proc == nil {
		if r.audio.paused {
			return nil
		}
		if r.audio.stopwatch.Position() < r.audio.duration().Seconds() {
			return r.audio.waitDone()
		}
	}
	r.stopAudio()
	return nil
}

func (r *ReaderScreen) togglePause() tea.Cmd {
	if r.audio == nil {
		return nil
	}
	if r.audio.paused {
		r.audio.resume()
		return tea.Batch(r.audio.nextWord(), r.audio.waitDone())
	}
	if !r.audio.pause() {
		r.stopAudio()
	}
	return nil
}

func (r *ReaderScreen) stopAudio() {
	if r.audio != nil {
		r.audio.stop()
		r.audio = nil
	}
	r.word = -1
}

// Close releases playback resources.
func (r *ReaderScreen) Close() {
	r.stopAudio()
}

func (r *ReaderScreen) goToPart(i int) {
	st := r.orch.Snapshot()
	if i < 0 || i >= len(st.Parts) || i == st.PartIndex {
		return
	}
	r.stopAudio()
	r.orch.SelectPart(i)
	r.answering = false
	r.input.Reset()
	r.resetView()
}

func (r *ReaderScreen) resetView() {
	r.scroll = 0
	r.rulerLine = 0
}

func (r *ReaderScreen) moveLine(delta int) {
	if r.ruler {
		r.rulerLine = clamp(r.rulerLine+delta, 0, max(r.textLines-1, 0))
		return
	}
	r.scroll = clamp(r.scroll+delta, 0, max(r.textLines-1, 0))
}

// advance moves to the next question and opens the summary once the text
// is finished.
func (r *ReaderScreen) advance() tea.Cmd {
	before := r.orch.Snapshot().PartIndex
	r.orch.Advance()
	r.input.Reset()
	st := r.orch.Snapshot()
	if st.PartIndex != before {
		r.stopAudio()
		r.resetView()
	}
	if st.Phase == session.PhaseComplete && !r.summaryShown {
		r.summaryShown = true
		sum := session.BuildSummary(st)
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(sum)}
		}
	}
	if st.Phase == session.PhaseQuestionsLoaded {
		r.answering = true
		return r.input.Init()
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
