package dictionary

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/cloze/internal/logger"
)

// ErrEmptyWord is returned for a blank lookup.
var ErrEmptyWord = errors.New("word is empty")

// ErrCacheMiss is returned by a Cache that does not hold the word.
var ErrCacheMiss = errors.New("cache miss")

// Lookuper fetches a word from an upstream dictionary.
type Lookuper interface {
	Lookup(ctx context.Context, word string) (*WordDetail, error)
}

// Cache remembers lookups. Implementations may ignore userID when their
// entries are shared.
type Cache interface {
	Get(ctx context.Context, userID, word string) (*WordDetail, error)
	Set(ctx context.Context, userID string, detail *WordDetail) error
}

// Service answers word lookups through a chain of caches in front of the
// upstream dictionary.
type Service struct {
	upstream Lookuper
	caches   []Cache
	log      *logger.Logger
}

// NewService creates a Service. Caches are consulted in order.
func NewService(upstream Lookuper, log *logger.Logger, caches ...Cache) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{upstream: upstream, caches: caches, log: log}
}

// Normalize trims and lowercases a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Lookup returns the details of word for userID. A hit in a later cache is
// copied into the earlier ones; an upstream result is copied into all of
// them. Cache failures are logged and otherwise ignored.
func (s *Service) Lookup(ctx context.Context, userID, word string) (*WordDetail, error) {
	word = Normalize(word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	for i, c := range s.caches {
		detail, err := c.Get(ctx, userID, word)
		if err == nil {
			s.fill(ctx, userID, detail, s.caches[:i])
			return detail, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("word cache read failed", "word", word, "error", err)
		}
	}

	detail, err := s.upstream.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, userID, detail, s.caches)
	return detail, nil
}

func (s *Service) fill(ctx context.Context, userID string, detail *WordDetail, caches []Cache) {
	for _, c := range caches {
		if err := c.Set(ctx, userID, detail); err != nil {
			s.log.Warn("word cache write failed", "word", detail.Word, "error", err)
		}
	}
}
