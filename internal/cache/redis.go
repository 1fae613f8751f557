// Package cache holds the shared Redis cache for word lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/cloze/internal/dictionary"
	"github.com/abhisek/cloze/internal/logger"
)

const keyPrefix = "cloze:word:"

// Options configures NewWordCache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // zero keeps entries until evicted
}

// WordCache stores word details in Redis. Dictionary entries are the same
// for everyone, so entries are shared across users.
type WordCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewWordCache connects to Redis and verifies the connection.
func NewWordCache(ctx context.Context, opts Options, log *logger.Logger) (*WordCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if log == nil {
		log = logger.Nop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &WordCache{rdb: rdb, ttl: opts.TTL, log: log.With("service", "RedisWordCache")}, nil
}

// Get returns the cached word or dictionary.ErrCacheMiss. userID is
// ignored.
func (c *WordCache) Get(ctx context.Context, _ string, word string) (*dictionary.WordDetail, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+word).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, dictionary.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var d dictionary.WordDetail
	if err := json.Unmarshal(raw, &d); err != nil {
		c.log.Warn("dropping unreadable cache entry", "word", word, "error", err)
		_ = c.rdb.Del(ctx, keyPrefix+word).Err()
		return nil, dictionary.ErrCacheMiss
	}
	return &d, nil
}

// Set stores d under its word.
func (c *WordCache) Set(ctx context.Context, _ string, d *dictionary.WordDetail) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, keyPrefix+d.Word, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *WordCache) Close() error {
	return c.rdb.Close()
}
