package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
)

var (
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("action already in progress")

	// ErrStale is returned when the text or language changed while a
	// request was in flight. Its result has been discarded.
	ErrStale = errors.New("session changed during request")

	// ErrNoText is returned by actions that need a loaded text.
	ErrNoText = errors.New("no text selected")

	// ErrNoQuestion is returned when answering without an active question.
	ErrNoQuestion = errors.New("no active question")
)

// Backend is the server API the orchestrator drives. *apiclient.Client
// implements it.
type Backend interface {
	Parts(ctx context.Context, name string, l lang.Language) (api.Parts, error)
	Simplify(ctx context.Context, req api.SimplifyRequest) (string, error)
	Format(ctx context.Context, req api.FormatRequest) (string, error)
	Questions(ctx context.Context, req api.QuestionsRequest) ([]string, error)
	QuestionsBatch(ctx context.Context, req api.BatchQuestionsRequest) (map[int][]string, *api.BatchQuestionsResponse, error)
	Evaluate(ctx context.Context, req api.EvaluateRequest) (*api.EvaluateResponse, error)
	Audio(ctx context.Context, req api.AudioRequest) (*apiclient.Audio, error)
}

// Action names a long-running operation for the in-flight guard.
type Action string

const (
	ActionLoad      Action = "load"
	ActionSimplify  Action = "simplify"
	ActionFormat    Action = "format"
	ActionQuestions Action = "questions"
	ActionBatch     Action = "batch"
	ActionEvaluate  Action = "evaluate"
	ActionAudio     Action = "audio"
)

// Orchestrator serializes State transitions and performs backend calls
// without holding the lock. Results are applied only on success and only
// if the session epoch is unchanged.
type Orchestrator struct {
	mu       sync.Mutex
	state    *State
	backend  Backend
	userID   string
	inFlight map[Action]bool
	log      *logger.Logger
}

// NewOrchestrator wraps state.
func NewOrchestrator(backend Backend, state *State, userID string, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		state:    state,
		backend:  backend,
		userID:   userID,
		inFlight: make(map[Action]bool),
		log:      log,
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() *State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Busy reports whether a is in flight.
func (o *Orchestrator) Busy(a Action) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight[a]
}

// update applies fn under the lock.
func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.state)
}

// begin marks a in flight and returns a snapshot taken under the same lock.
func (o *Orchestrator) begin(a Action) (*State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[a] {
		return nil, ErrBusy
	}
	o.inFlight[a] = true
	return o.state.Clone(), nil
}

func (o *Orchestrator) end(a Action) {
	o.mu.Lock()
	delete(o.inFlight, a)
	o.mu.Unlock()
}

// commit applies fn if the epoch still matches.
func (o *Orchestrator) commit(epoch uint64, fn func(s *State)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.epoch != epoch {
		return ErrStale
	}
	fn(o.state)
	return nil
}

// SelectText loads a text's parts and starts it at the first part.
func (o *Orchestrator) SelectText(ctx context.Context, name string) error {
	snap, err := o.begin(ActionLoad)
	if err != nil {
		return err
	}
	defer o.end(ActionLoad)

	parts, err := o.backend.Parts(ctx, name, snap.Language)
	if err != nil {
		return fmt.Errorf("load text %q: %w", name, err)
	}
	return o.commit(snap.epoch, func(s *State) {
		s.SelectText(name, parts)
		o.log.Info("text selected", "text", name, "language", string(s.Language), "parts", len(parts))
	})
}

func (o *Orchestrator) SelectPart(i int) {
	o.update(func(s *State) { s.SelectPart(i) })
}

func (o *Orchestrator) SetLanguage(l lang.Language) {
	o.update(func(s *State) { s.SetLanguage(l) })
}

func (o *Orchestrator) SetDifficulty(d gateway.Difficulty) {
	o.update(func(s *State) { s.SetDifficulty(d) })
}

func (o *Orchestrator) SetLevel(level gateway.Level) {
	o.update(func(s *State) { s.SetLevel(level) })
}

func (o *Orchestrator) SetStrictness(n gateway.Strictness) {
	o.update(func(s *State) { s.SetStrictness(n) })
}

func (o *Orchestrator) Advance() {
	o.update(func(s *State) { s.Advance() })
}

func (o *Orchestrator) StartOver() {
	o.update(func(s *State) { s.StartOver() })
}

// ShowOriginal leaves simplified mode.
func (o *Orchestrator) ShowOriginal() {
	o.update(func(s *State) { s.SetMode(ModeOriginal) })
}

// ShowSimplified enters simplified mode, simplifying the active part first
// if it is not cached. On failure the original text stays displayed.
func (o *Orchestrator) ShowSimplified(ctx context.Context) error {
	o.mu.Lock()
	switched := o.state.SetMode(ModeSimplified)
	o.mu.Unlock()
	if switched {
		return nil
	}

	snap, err := o.begin(ActionSimplify)
	if err != nil {
		return err
	}
	defer o.end(ActionSimplify)
	if snap.CurrentPart() == "" {
		return ErrNoText
	}

	key := snap.SimplifiedKey()
	text, err := o.backend.Simplify(ctx, api.SimplifyRequest{
		Text:     snap.Parts[snap.PartIndex].Text,
		Language: string(key.Language),
		Level:    string(key.Level),
	})
	if err != nil {
		return fmt.Errorf("simplify: %w", err)
	}
	return o.commit(snap.epoch, func(s *State) {
		s.ApplySimplified(key, text)
		if s.SimplifiedKey() == key {
			s.SetMode(ModeSimplified)
		}
	})
}

// ToggleSimplified switches between original and simplified text.
func (o *Orchestrator) ToggleSimplified(ctx context.Context) error {
	o.mu.Lock()
	mode := o.state.Mode
	o.mu.Unlock()
	if mode == ModeSimplified {
		o.ShowOriginal()
		return nil
	}
	return o.ShowSimplified(ctx)
}

// Format tidies whitespace and punctuation of the displayed text. On
// failure the text is unchanged.
func (o *Orchestrator) Format(ctx context.Context) error {
	snap, err := o.begin(ActionFormat)
	if err != nil {
		return err
	}
	defer o.end(ActionFormat)
	if snap.CurrentPart() == "" {
		return ErrNoText
	}

	target := snap.FormatTarget()
	text, err := o.backend.Format(ctx, api.FormatRequest{Text: snap.CurrentText(), Language: string(snap.Language)})
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return o.commit(snap.epoch, func(s *State) { s.ApplyFormatted(target, text) })
}

// GenerateQuestions fetches a question set for the active part. Questions
// already shown for it are sent as ones to avoid.
func (o *Orchestrator) GenerateQuestions(ctx context.Context) error {
	snap, err := o.begin(ActionQuestions)
	if err != nil {
		return err
	}
	defer o.end(ActionQuestions)
	if snap.CurrentPart() == "" {
		return ErrNoText
	}

	target := snap.QuestionTarget()
	qs, err := o.backend.Questions(ctx, api.QuestionsRequest{
		Fragment:          snap.CurrentText(),
		PreviousQuestions: snap.Questions,
		Language:          string(snap.Language),
		Difficulty:        string(snap.Difficulty),
	})
	if err != nil {
		return fmt.Errorf("questions: %w", err)
	}
	return o.commit(snap.epoch, func(s *State) { s.ApplyQuestions(target, qs) })
}

// BatchStats reports the cost of a batch generation.
type BatchStats struct {
	TotalFragments int
	TotalAPICalls  int
}

// GenerateBatch fetches questions for every part at once and caches them
// under the difficulty and mode the request was built with.
func (o *Orchestrator) GenerateBatch(ctx context.Context) (*BatchStats, error) {
	snap, err := o.begin(ActionBatch)
	if err != nil {
		return nil, err
	}
	defer o.end(ActionBatch)
	if len(snap.Parts) == 0 {
		return nil, ErrNoText
	}

	target := snap.BatchTarget()
	fragments := make([]string, len(snap.Parts))
	for i := range snap.Parts {
		fragments[i] = snap.TextOf(i)
	}
	byIndex, resp, err := o.backend.QuestionsBatch(ctx, api.BatchQuestionsRequest{
		TextName:   snap.TextName,
		Fragments:  fragments,
		Language:   string(snap.Language),
		Difficulty: string(snap.Difficulty),
	})
	if err != nil {
		return nil, fmt.Errorf("batch questions: %w", err)
	}
	if err := o.commit(snap.epoch, func(s *State) { s.ApplyBatch(target, byIndex) }); err != nil {
		return nil, err
	}
	o.log.Info("batch questions applied", "text", snap.TextName, "fragments", resp.TotalFragments, "api_calls", resp.TotalAPICalls)
	return &BatchStats{TotalFragments: resp.TotalFragments, TotalAPICalls: resp.TotalAPICalls}, nil
}

// Submit evaluates an answer to the active question and scores it. A
// rate-limited result is returned but not scored.
func (o *Orchestrator) Submit(ctx context.Context, answer string) (*Evaluation, error) {
	snap, err := o.begin(ActionEvaluate)
	if err != nil {
		return nil, err
	}
	defer o.end(ActionEvaluate)

	target, ok := snap.AnswerTarget()
	if !ok {
		return nil, ErrNoQuestion
	}
	resp, err := o.backend.Evaluate(ctx, api.EvaluateRequest{
		Fragment:   snap.CurrentText(),
		Question:   target.Question(),
		Answer:     answer,
		Language:   string(snap.Language),
		UserID:     o.userID,
		Strictness: int(snap.Strictness),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	ev := Evaluation{
		Feedback:       resp.Feedback,
		CorrectSnippet: resp.CorrectSnippet,
		Correct:        resp.Correct && !resp.RateLimited,
		RateLimited:    resp.RateLimited,
		WaitTime:       resp.WaitTime,
	}
	if err := o.commit(snap.epoch, func(s *State) { s.ApplyEvaluation(target, ev) }); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Narrate synthesizes audio for the displayed text.
func (o *Orchestrator) Narrate(ctx context.Context) (*apiclient.Audio, error) {
	snap, err := o.begin(ActionAudio)
	if err != nil {
		return nil, err
	}
	defer o.end(ActionAudio)
	if snap.CurrentPart() == "" {
		return nil, ErrNoText
	}

	audio, err := o.backend.Audio(ctx, api.AudioRequest{Text: snap.CurrentText(), Language: string(snap.Language)})
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	if snap.epoch != o.Snapshot().epoch {
		return nil, ErrStale
	}
	return audio, nil
}
