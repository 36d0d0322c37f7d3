// Package api defines the JSON bodies exchanged between the Lasi server
// and its clients.
package api

// Fragment is one stored part of a text with its stable identifier.
type Fragment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Text is a named text in one language with its ordered parts.
type Text struct {
	Name      string     `json:"name"`
	Language  string     `json:"language"`
	Parts     Parts      `json:"parts"`
	Fragments []Fragment `json:"fragments,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// Text sources.
const (
	SourceLibrary = "library"
	SourceUpload  = "upload"
)

type UploadTextRequest struct {
	Name                 string `json:"name"`
	Language             string `json:"language"`
	Text                 string `json:"text"`
	AutoSplit            *bool  `json:"autoSplit,omitempty"`
	FragmentTargetTokens int    `json:"fragmentTargetTokens,omitempty"`
}

type UploadTextResponse struct {
	OK   bool `json:"ok"`
	Item Text `json:"item"`
}

type PreviewRequest struct {
	Text         string `json:"text"`
	TargetTokens int    `json:"targetTokens,omitempty"`
}

type PreviewResponse struct {
	Fragments []string `json:"fragments"`
}

type SimplifyRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Level    string `json:"level,omitempty"`
}

type FormatRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// TextResponse carries the result of simplify and format.
type TextResponse struct {
	Text string `json:"text"`
}

type QuestionsRequest struct {
	Fragment          string   `json:"fragment"`
	PreviousQuestions []string `json:"previous_questions"`
	Language          string   `json:"language,omitempty"`
	Difficulty        string   `json:"difficulty,omitempty"`
}

type BatchQuestionsRequest struct {
	TextName   string   `json:"textName"`
	Fragments  []string `json:"fragments"`
	Language   string   `json:"language,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// BatchQuestionsResponse keys QuestionsByFragment by the decimal index of
// each fragment in the request.
type BatchQuestionsResponse struct {
	QuestionsByFragment map[string][]string `json:"questions_by_fragment"`
	TotalFragments      int                 `json:"total_fragments"`
	TotalAPICalls       int                 `json:"total_api_calls"`
}

type EvaluateRequest struct {
	Fragment   string `json:"fragment"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Language   string `json:"language,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Strictness int    `json:"strictness,omitempty"`
}

type EvaluateResponse struct {
	Feedback       string  `json:"feedback"`
	CorrectSnippet string  `json:"correct_snippet"`
	Correct        bool    `json:"correct"`
	RateLimited    bool    `json:"rate_limited"`
	WaitTime       float64 `json:"wait_time,omitempty"`
}

type AudioRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// AudioResponse carries base64 audio and per-word timings in seconds.
type AudioResponse struct {
	Audio string       `json:"audio"`
	MIME  string       `json:"mime"`
	Words []WordTiming `json:"words"`
}

type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
