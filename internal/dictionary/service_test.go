package dictionary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cloze/internal/store"
)

type fakeUpstream struct {
	calls  []string
	detail *WordDetail
	err    error
}

func (f *fakeUpstream) Lookup(_ context.Context, word string) (*WordDetail, error) {
	f.calls = append(f.calls, word)
	if f.err != nil {
		return nil, f.err
	}
	d := *f.detail
	d.Word = word
	return &d, nil
}

type memoryCache struct {
	items   map[string]*WordDetail
	readErr error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*WordDetail)}
}

func (m *memoryCache) Get(_ context.Context, userID, word string) (*WordDetail, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	d, ok := m.items[userID+"/"+word]
	if !ok {
		return nil, ErrCacheMiss
	}
	return d, nil
}

func (m *memoryCache) Set(_ context.Context, userID string, d *WordDetail) error {
	m.sets++
	m.items[userID+"/"+d.Word] = d
	return nil
}

var sampleDetail = &WordDetail{Meaning: "fast", PartOfSpeech: "adjective", Phonetic: "/kwɪk/"}

func TestService_Lookup_NormalizesAndFillsCaches(t *testing.T) {
	up := &fakeUpstream{detail: sampleDetail}
	first, second := newMemoryCache(), newMemoryCache()
	svc := NewService(up, nil, first, second)

	d, err := svc.Lookup(context.Background(), "alice", "  Quick ")
	require.NoError(t, err)
	assert.Equal(t, "quick", d.Word)
	assert.Equal(t, []string{"quick"}, up.calls)
	assert.Contains(t, first.items, "alice/quick")
	assert.Contains(t, second.items, "alice/quick")

	_, err = svc.Lookup(context.Background(), "alice", "QUICK")
	require.NoError(t, err)
	assert.Len(t, up.calls, 1, "second lookup served from cache")
}

func TestService_Lookup_BackfillsEarlierCaches(t *testing.T) {
	up := &fakeUpstream{detail: sampleDetail}
	first, second := newMemoryCache(), newMemoryCache()
	second.items["alice/quick"] = &WordDetail{Word: "quick", Meaning: "cached"}
	svc := NewService(up, nil, first, second)

	d, err := svc.Lookup(context.Background(), "alice", "quick")
	require.NoError(t, err)
	assert.Equal(t, "cached", d.Meaning)
	assert.Empty(t, up.calls)
	assert.Equal(t, 1, first.sets)
	assert.Equal(t, 0, second.sets)
}

func TestService_Lookup_CacheFailureIgnored(t *testing.T) {
	up := &fakeUpstream{detail: sampleDetail}
	broken := newMemoryCache()
	broken.readErr = errors.New("connection refused")
	svc := NewService(up, nil, broken)

	d, err := svc.Lookup(context.Background(), "alice", "quick")
	require.NoError(t, err)
	assert.Equal(t, "fast", d.Meaning)
}

func TestService_Lookup_Errors(t *testing.T) {
	svc := NewService(&fakeUpstream{err: ErrNotFound}, nil)

	_, err := svc.Lookup(context.Background(), "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyWord)

	_, err = svc.Lookup(context.Background(), "alice", "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCache(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	st, err := store.Open(context.Background(), store.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := NewStoreCache(st.WordCacheRepo())
	ctx := context.Background()

	_, err = c.Get(ctx, "alice", "quick")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := &WordDetail{Word: "quick", Meaning: "fast", PartOfSpeech: "adjective", Phonetic: "/kwɪk/"}
	require.NoError(t, c.Set(ctx, "alice", want))

	got, err := c.Get(ctx, "alice", "quick")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = c.Get(ctx, "bob", "quick")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
