// Package session models one reading session as an explicit state value
// with pure transitions, plus an Orchestrator that performs the network
// calls and applies their results.
package session

import (
	"maps"
	"slices"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
)

// Phase is the position in the reading state machine.
type Phase int

const (
	PhaseIdle            Phase = iota // No text selected
	PhaseFragmentLoaded                // Part shown, no questions yet
	PhaseQuestionsLoaded               // Questions available for the part
	PhaseAnswerSubmitted               // Evaluation shown for the current question
	PhaseComplete                      // Past the last question of the last part
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFragmentLoaded:
		return "fragment-loaded"
	case PhaseQuestionsLoaded:
		return "questions-loaded"
	case PhaseAnswerSubmitted:
		return "answer-submitted"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// Outcome is the result of the last submitted answer.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
	OutcomeRateLimited
)

// Mode selects the original or the simplified text.
type Mode int

const (
	ModeOriginal Mode = iota
	ModeSimplified
)

// Evaluation is the server's verdict on one answer.
type Evaluation struct {
	Feedback       string
	CorrectSnippet string
	Correct        bool
	RateLimited    bool
	WaitTime       float64
}

// SimplifiedKey identifies one simplified rendition of a part.
type SimplifiedKey struct {
	Language lang.Language
	Text     string
	Part     string
	Level    gateway.Level
}

// source names the text a question set was generated from.
type source struct {
	simplified bool
	level      gateway.Level
}

type questionKey struct {
	part       string
	difficulty gateway.Difficulty
	src        source
}

type formatKey struct {
	part string
	src  source
}

// State is the full reading session. Methods mutate the receiver and never
// perform I/O.
type State struct {
	Language   lang.Language
	Difficulty gateway.Difficulty
	Level      gateway.Level
	Strictness gateway.Strictness

	TextName      string
	Parts         api.Parts
	PartIndex     int
	Mode          Mode
	Phase         Phase
	Questions     []string
	QuestionIndex int

	Evaluation *Evaluation
	Outcome    Outcome
	Score      ScoreTracker

	questions  map[questionKey][]string
	simplified map[SimplifiedKey]string
	formatted  map[formatKey]string
	epoch      uint64
}

// NewState returns an idle session.
func NewState(l lang.Language, d gateway.Difficulty, level gateway.Level, strictness gateway.Strictness) *State {
	return &State{
		Language:   l,
		Difficulty: d,
		Level:      level,
		Strictness: strictness,
		Score:      newScoreTracker(),
		questions:  make(map[questionKey][]string),
		simplified: make(map[SimplifiedKey]string),
		formatted:  make(map[formatKey]string),
	}
}

// Epoch changes whenever a different text or language is selected.
func (s *State) Epoch() uint64 { return s.epoch }

// SelectText loads a text at its first part. Cached questions, format
// overrides and the score belong to the previous text and are dropped.
func (s *State) SelectText(name string, parts api.Parts) {
	s.epoch++
	s.TextName = name
	s.Parts = parts
	s.Mode = ModeOriginal
	s.questions = make(map[questionKey][]string)
	s.formatted = make(map[formatKey]string)
	s.Score.Reset()
	if len(parts) == 0 {
		s.Phase = PhaseIdle
		s.PartIndex = 0
		s.clearQuestion()
		s.Questions = nil
		return
	}
	s.SelectPart(0)
}

// SetLanguage switches language and returns to idle.
func (s *State) SetLanguage(l lang.Language) {
	if l == s.Language {
		return
	}
	s.epoch++
	s.Language = l
	s.TextName = ""
	s.Parts = nil
	s.PartIndex = 0
	s.Mode = ModeOriginal
	s.Phase = PhaseIdle
	s.Questions = nil
	s.questions = make(map[questionKey][]string)
	s.formatted = make(map[formatKey]string)
	s.Score.Reset()
	s.clearQuestion()
}

// SelectPart switches to part i, reusing cached questions when present.
// Out-of-range indexes are ignored.
func (s *State) SelectPart(i int) {
	if i < 0 || i >= len(s.Parts) {
		return
	}
	s.PartIndex = i
	s.refreshQuestions()
}

// SetDifficulty changes question difficulty. Questions are looked up again
// because the cache is keyed by difficulty.
func (s *State) SetDifficulty(d gateway.Difficulty) {
	s.Difficulty = d
	s.refreshQuestions()
}

// SetLevel changes the simplification level.
func (s *State) SetLevel(level gateway.Level) {
	s.Level = level
	s.refreshQuestions()
}

// SetStrictness changes evaluation strictness.
func (s *State) SetStrictness(n gateway.Strictness) {
	s.Strictness = n
}

// SetMode shows the original or simplified text. It reports false when the
// simplified text for the current part is not cached yet; the mode is then
// left unchanged.
func (s *State) SetMode(m Mode) bool {
	if m == ModeSimplified {
		if _, ok := s.simplified[s.SimplifiedKey()]; !ok {
			return false
		}
	}
	s.Mode = m
	s.refreshQuestions()
	return true
}

// CurrentPart returns the name of the active part.
func (s *State) CurrentPart() string {
	if s.PartIndex < 0 || s.PartIndex >= len(s.Parts) {
		return ""
	}
	return s.Parts[s.PartIndex].Name
}

// SimplifiedKey is the cache key for the active part at the current level.
func (s *State) SimplifiedKey() SimplifiedKey {
	return s.simplifiedKeyFor(s.CurrentPart())
}

func (s *State) simplifiedKeyFor(part string) SimplifiedKey {
	return SimplifiedKey{Language: s.Language, Text: s.TextName, Part: part, Level: s.Level}
}

// ApplySimplified caches a simplified text.
func (s *State) ApplySimplified(key SimplifiedKey, text string) {
	s.simplified[key] = text
}

// Simplified returns the cached simplified text for key.
func (s *State) Simplified(key SimplifiedKey) (string, bool) {
	t, ok := s.simplified[key]
	return t, ok
}

func (s *State) sourceFor(part string) source {
	if s.Mode == ModeSimplified {
		if _, ok := s.simplified[s.simplifiedKeyFor(part)]; ok {
			return source{simplified: true, level: s.Level}
		}
	}
	return source{}
}

// TextOf returns the displayed text of part i: the simplified version in
// simplified mode when cached, with any format override applied.
func (s *State) TextOf(i int) string {
	if i < 0 || i >= len(s.Parts) {
		return ""
	}
	part := s.Parts[i].Name
	src := s.sourceFor(part)
	if t, ok := s.formatted[formatKey{part: part, src: src}]; ok {
		return t
	}
	if src.simplified {
		return s.simplified[s.simplifiedKeyFor(part)]
	}
	return s.Parts[i].Text
}

// CurrentText is the displayed text of the active part.
func (s *State) CurrentText() string {
	return s.TextOf(s.PartIndex)
}

// FormatTarget identifies the displayed text a format request applies to.
type FormatTarget struct {
	key formatKey
}

// FormatTarget captures the active part's displayed text for formatting.
func (s *State) FormatTarget() FormatTarget {
	part := s.CurrentPart()
	return FormatTarget{key: formatKey{part: part, src: s.sourceFor(part)}}
}

// ApplyFormatted stores a formatted override for the target text.
func (s *State) ApplyFormatted(t FormatTarget, text string) {
	s.formatted[t.key] = text
}

// QuestionTarget identifies the question set a generation request fills.
type QuestionTarget struct {
	key questionKey
}

// QuestionTarget captures the cache key of the active part.
func (s *State) QuestionTarget() QuestionTarget {
	return QuestionTarget{key: s.questionKeyFor(s.CurrentPart())}
}

func (s *State) questionKeyFor(part string) questionKey {
	return questionKey{part: part, difficulty: s.Difficulty, src: s.sourceFor(part)}
}

// ApplyQuestions caches a question set and shows it if its part is active.
func (s *State) ApplyQuestions(t QuestionTarget, qs []string) {
	s.questions[t.key] = qs
	if t.key == s.questionKeyFor(s.CurrentPart()) {
		s.refreshQuestions()
	}
}

// BatchTarget holds the cache key of every part at the time a batch
// request was built.
type BatchTarget struct {
	keys []questionKey
}

// BatchTarget captures one question key per part.
func (s *State) BatchTarget() BatchTarget {
	keys := make([]questionKey, len(s.Parts))
	for i, p := range s.Parts {
		keys[i] = s.questionKeyFor(p.Name)
	}
	return BatchTarget{keys: keys}
}

// ApplyBatch replaces the cached question sets of the target's difficulty
// with one set per part index. Sets cached for other difficulties stay.
// The visible questions change only when the active part's key is one of
// the target's.
func (s *State) ApplyBatch(t BatchTarget, byIndex map[int][]string) {
	if len(t.keys) == 0 {
		return
	}
	difficulty := t.keys[0].difficulty
	for k := range s.questions {
		if k.difficulty == difficulty {
			delete(s.questions, k)
		}
	}
	for i, qs := range byIndex {
		if i < 0 || i >= len(t.keys) || len(qs) == 0 {
			continue
		}
		s.questions[t.keys[i]] = qs
	}
	if slices.Contains(t.keys, s.questionKeyFor(s.CurrentPart())) {
		s.refreshQuestions()
	}
}

// HasQuestions reports whether a question set is cached for part i.
func (s *State) HasQuestions(i int) bool {
	if i < 0 || i >= len(s.Parts) {
		return false
	}
	_, ok := s.questions[s.questionKeyFor(s.Parts[i].Name)]
	return ok
}

// CurrentQuestion returns the active question.
func (s *State) CurrentQuestion() (string, bool) {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Questions) {
		return "", false
	}
	return s.Questions[s.QuestionIndex], true
}

// AnswerTarget identifies the question an answer was given to.
type AnswerTarget struct {
	epoch    uint64
	part     string
	question string
	index    int
}

// AnswerTarget captures the active question. ok is false when there is
// no question to answer.
func (s *State) AnswerTarget() (AnswerTarget, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return AnswerTarget{}, false
	}
	return AnswerTarget{epoch: s.epoch, part: s.CurrentPart(), question: q, index: s.QuestionIndex}, true
}

// Question is the question text of the target.
func (t AnswerTarget) Question() string { return t.question }

// ApplyEvaluation scores an answer. A rate-limited evaluation never
// touches the tracker.
func (s *State) ApplyEvaluation(t AnswerTarget, ev Evaluation) {
	if t.epoch != s.epoch {
		return
	}
	if !ev.RateLimited {
		s.Score.Record(t.part, ev.Correct)
	}
	if t.part != s.CurrentPart() || t.index != s.QuestionIndex {
		return
	}
	e := ev
	s.Evaluation = &e
	switch {
	case ev.RateLimited:
		s.Outcome = OutcomeRateLimited
	case ev.Correct:
		s.Outcome = OutcomeCorrect
	default:
		s.Outcome = OutcomeIncorrect
	}
	s.Phase = PhaseAnswerSubmitted
}

// Advance moves to the next question, else to the first question of the
// next part, else completes the session.
func (s *State) Advance() {
	if s.Phase == PhaseIdle || s.Phase == PhaseComplete {
		return
	}
	if s.QuestionIndex+1 < len(s.Questions) {
		s.QuestionIndex++
		s.clearQuestion()
		s.Phase = PhaseQuestionsLoaded
		return
	}
	if s.PartIndex+1 < len(s.Parts) {
		s.SelectPart(s.PartIndex + 1)
		return
	}
	s.clearQuestion()
	s.Phase = PhaseComplete
}

// StartOver clears the score and returns to the first part.
func (s *State) StartOver() {
	if len(s.Parts) == 0 {
		return
	}
	s.Score.Reset()
	s.SelectPart(0)
}

func (s *State) clearQuestion() {
	s.Evaluation = nil
	s.Outcome = OutcomeNone
}

func (s *State) refreshQuestions() {
	if len(s.Parts) == 0 {
		return
	}
	s.QuestionIndex = 0
	s.clearQuestion()
	if qs, ok := s.questions[s.questionKeyFor(s.CurrentPart())]; ok && len(qs) > 0 {
		s.Questions = qs
		s.Phase = PhaseQuestionsLoaded
		return
	}
	s.Questions = nil
	s.Phase = PhaseFragmentLoaded
}

// Clone returns a deep copy safe to read without the orchestrator lock.
func (s *State) Clone() *State {
	c := *s
	c.Parts = append(api.Parts(nil), s.Parts...)
	c.Questions = append([]string(nil), s.Questions...)
	c.Score = s.Score.clone()
	if s.Evaluation != nil {
		e := *s.Evaluation
		c.Evaluation = &e
	}
	c.questions = maps.Clone(s.questions)
	c.simplified = maps.Clone(s.simplified)
	c.formatted = maps.Clone(s.formatted)
	return &c
}
