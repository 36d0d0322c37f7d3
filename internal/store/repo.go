package store

import (
	"context"
	"time"
)

// QueryOpts filters QueryLLMEvents. Zero values match everything.
type QueryOpts struct {
	Limit      int
	Since      time.Time
	Purpose    string
	FailedOnly bool
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one request purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// PruneLLMEvents deletes events recorded before cutoff and reports
	// how many went.
	PruneLLMEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

// TextRecord is an uploaded text with its ordered parts.
type TextRecord struct {
	ID        string
	Name      string
	Language  string
	Parts     []PartRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartRecord is one named fragment of a TextRecord.
type PartRecord struct {
	ID       string
	Position int
	Name     string
	Body     string
}

// TextRepo persists uploaded texts keyed by (name, language).
type TextRepo interface {
	// Upsert stores rec, replacing any text with the same name and language.
	// Missing IDs are assigned; rec is updated in place.
	Upsert(ctx context.Context, rec *TextRecord) error

	// List returns texts for language ordered by name. An empty language
	// lists everything.
	List(ctx context.Context, language string) ([]TextRecord, error)

	// Get returns one text with its parts, or ErrNotFound.
	Get(ctx context.Context, name, language string) (*TextRecord, error)

	// Delete removes a text and its parts, or returns ErrNotFound.
	Delete(ctx context.Context, name, language string) error
}
