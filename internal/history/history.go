package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/logger"
	"github.com/abhisek/cloze/internal/store"
)

// DefaultLimit is how many entries are kept per user.
const DefaultLimit = 50

// ErrNotFound is returned when the user has no entry with the given id.
var ErrNotFound = store.ErrNotFound

// Entry is one saved exercise. Its JSON form matches the records the web
// client keeps, so exports round-trip through Import.
type Entry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	WordList  string `json:"wordList"`
	exercise.Exercise
	Answers map[int]string `json:"answers,omitempty"`
}

// CreatedAt returns the entry time.
func (e *Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Service manages per-user exercise history.
type Service struct {
	repo  store.HistoryRepo
	limit int
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a Service that keeps at most limit entries per user.
func NewService(repo store.HistoryRepo, limit int, log *logger.Logger) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, limit: limit, log: log, now: time.Now}
}

// Save stores ex as the user's newest entry and drops entries beyond the
// limit. A prune failure is logged and does not fail the save.
func (s *Service) Save(ctx context.Context, userID, wordList string, ex *exercise.Exercise) (*Entry, error) {
	entry := &Entry{
		ID:        newID(),
		Timestamp: s.now().UnixMilli(),
		WordList:  wordList,
		Exercise:  *ex,
	}
	if err := s.insert(ctx, userID, entry); err != nil {
		return nil, err
	}
	// The entry is already stored. A failed prune only leaves extra old
	// entries behind, and the next successful save trims them.
	s.prune(ctx, userID)
	s.log.Debug("history entry saved", "user", userID, "id", entry.ID, "blanks", len(ex.Options))
	return entry, nil
}

func (s *Service) prune(ctx context.Context, userID string) {
	if err := s.repo.Prune(ctx, userID, s.limit); err != nil {
		s.log.Warn("history prune failed", "user", userID, "limit", s.limit, "error", err)
	}
}

// List returns the user's entries, newest first. A limit of zero or less
// returns all of them.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	recs, err := s.repo.List(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	entries := make([]Entry, 0, len(recs))
	for i := range recs {
		e, err := fromRecord(&recs[i])
		if err != nil {
			s.log.Warn("skipping unreadable history entry", "user", userID, "id", recs[i].ID, "error", err)
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Get returns one entry or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (*Entry, error) {
	rec, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Delete removes one entry or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Clear removes every entry of the user and reports how many there were.
func (s *Service) Clear(ctx context.Context, userID string) (int64, error) {
	return s.repo.Clear(ctx, userID)
}

// RecordAnswers stores the user's selections for an entry and scores them.
// Imported entries carry no answer key and score zero of zero.
func (s *Service) RecordAnswers(ctx context.Context, userID, id string, answers map[int]string) (exercise.Score, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return exercise.Score{}, err
	}

	kept := make(map[int]string, len(answers))
	for n, a := range answers {
		if _, ok := entry.Options[n]; ok && a != "" {
			kept[n] = a
		}
	}
	raw, err := json.Marshal(kept)
	if err != nil {
		return exercise.Score{}, fmt.Errorf("encode answers: %w", err)
	}
	if err := s.repo.UpdateAnswers(ctx, userID, id, raw); err != nil {
		return exercise.Score{}, err
	}
	return exercise.CheckAnswers(&entry.Exercise, kept), nil
}

func (s *Service) insert(ctx context.Context, userID string, e *Entry) error {
	rec, err := toRecord(userID, e)
	if err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func toRecord(userID string, e *Entry) (*store.HistoryRecord, error) {
	rec := &store.HistoryRecord{
		ID:        e.ID,
		UserID:    userID,
		CreatedAt: e.CreatedAt(),
		WordList:  e.WordList,
		Article:   e.Article,
	}
	var err error
	if rec.Options, err = json.Marshal(e.Options); err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	if rec.OptionsDetail, err = marshalOptional(e.OptionsDetail, len(e.OptionsDetail)); err != nil {
		return nil, fmt.Errorf("encode options detail: %w", err)
	}
	if rec.Annotations, err = marshalOptional(e.Annotations, len(e.Annotations)); err != nil {
		return nil, fmt.Errorf("encode annotations: %w", err)
	}
	if rec.AnswerKey, err = marshalOptional(e.AnswerKey, len(e.AnswerKey)); err != nil {
		return nil, fmt.Errorf("encode answer key: %w", err)
	}
	if rec.Answers, err = marshalOptional(e.Answers, len(e.Answers)); err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	return rec, nil
}

func marshalOptional(v any, n int) (json.RawMessage, error) {
	if n == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func fromRecord(rec *store.HistoryRecord) (*Entry, error) {
	e := &Entry{
		ID:        rec.ID,
		Timestamp: rec.CreatedAt.UnixMilli(),
		WordList:  rec.WordList,
	}
	e.Article = rec.Article

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  any
	}{
		{"options", rec.Options, &e.Options},
		{"options detail", rec.OptionsDetail, &e.OptionsDetail},
		{"annotations", rec.Annotations, &e.Annotations},
		{"answer key", rec.AnswerKey, &e.AnswerKey},
		{"answers", rec.Answers, &e.Answers},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", f.name, rec.ID, err)
		}
	}
	if e.Options == nil {
		return nil, errors.New("history entry has no options")
	}
	return e, nil
}
