package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From, when set
}

// HistoryRecord is one generated exercise as persisted. The structured
// fields are stored as JSON documents; their shape belongs to the caller.
type HistoryRecord struct {
	ID            string
	UserID        string
	CreatedAt     time.Time
	WordList      string
	Article       string
	Options       json.RawMessage
	OptionsDetail json.RawMessage // nil when absent
	Annotations   json.RawMessage // nil when absent
	AnswerKey     json.RawMessage // nil when absent
	Answers       json.RawMessage // nil until the user answers
}

// HistoryRepo persists per-user exercise history.
type HistoryRepo interface {
	// Insert stores a record. ID and CreatedAt must be set.
	Insert(ctx context.Context, rec *HistoryRecord) error

	// Get returns the user's record by ID, or ErrNotFound.
	Get(ctx context.Context, userID, id string) (*HistoryRecord, error)

	// List returns the user's records, newest first.
	List(ctx context.Context, userID string, opts QueryOpts) ([]HistoryRecord, error)

	// UpdateAnswers replaces the stored answers. Returns ErrNotFound when
	// the record does not exist.
	UpdateAnswers(ctx context.Context, userID, id string, answers json.RawMessage) error

	// Delete removes one record. Returns ErrNotFound when nothing matched.
	Delete(ctx context.Context, userID, id string) error

	// Clear removes all of the user's records and reports how many.
	Clear(ctx context.Context, userID string) (int64, error)

	// Prune deletes all but the user's N most recent records.
	Prune(ctx context.Context, userID string, keep int) error
}

// CachedWord is a dictionary lookup result remembered per user.
type CachedWord struct {
	UserID       string
	Word         string
	Meaning      string
	Phonetic     string
	PartOfSpeech string
	UpdatedAt    time.Time
}

// WordCacheRepo stores word lookups.
type WordCacheRepo interface {
	// Get returns the cached word, or ErrNotFound.
	Get(ctx context.Context, userID, word string) (*CachedWord, error)

	// Upsert inserts or replaces the cached word.
	Upsert(ctx context.Context, w *CachedWord) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	UserID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// LLMEvent is a recorded LLM request as read back from the store.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}
