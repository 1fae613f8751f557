package dictionary

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/cloze/internal/store"
)

// StoreCache keeps lookups per user in the word_cache table.
type StoreCache struct {
	repo store.WordCacheRepo
	now  func() time.Time
}

// NewStoreCache wraps repo as a Cache.
func NewStoreCache(repo store.WordCacheRepo) *StoreCache {
	return &StoreCache{repo: repo, now: time.Now}
}

func (c *StoreCache) Get(ctx context.Context, userID, word string) (*WordDetail, error) {
	w, err := c.repo.Get(ctx, userID, word)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return &WordDetail{
		Word:         w.Word,
		Meaning:      w.Meaning,
		PartOfSpeech: w.PartOfSpeech,
		Phonetic:     w.Phonetic,
	}, nil
}

func (c *StoreCache) Set(ctx context.Context, userID string, d *WordDetail) error {
	return c.repo.Upsert(ctx, &store.CachedWord{
		UserID:       userID,
		Word:         d.Word,
		Meaning:      d.Meaning,
		PartOfSpeech: d.PartOfSpeech,
		Phonetic:     d.Phonetic,
		UpdatedAt:    c.now(),
	})
}
