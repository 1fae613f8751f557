package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cloze/internal/cache"
	"github.com/abhisek/cloze/internal/config"
	"github.com/abhisek/cloze/internal/dictionary"
	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/history"
	"github.com/abhisek/cloze/internal/llm"
	"github.com/abhisek/cloze/internal/logger"
	"github.com/abhisek/cloze/internal/server"
	"github.com/abhisek/cloze/internal/store"
)

// app holds what every command needs: configuration, a logger and an open
// store.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
	user  string

	closers []func()
}

// newApp loads configuration and opens the store. Logging goes to stderr
// when alwaysLog is set or --verbose was given; otherwise it is discarded.
func newApp(cmd *cobra.Command, alwaysLog bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	log := logger.Nop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose || alwaysLog {
		if log, err = logger.New(cfg.Env); err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	dsn, err := cfg.Database.ResolveDSN()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(cmd.Context(), cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = server.DefaultUserID
	}

	return &app{cfg: cfg, log: log, store: st, user: user}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.store.Close()
	a.log.Sync()
}

// generator builds the provider-backed generator. attempts above zero
// overrides the configured retry attempts.
func (a *app) generator(ctx context.Context, attempts int) (exercise.Generator, error) {
	provider, err := llm.NewProvider(ctx, a.cfg.LLM, a.store.EventRepo(), a.log)
	if err != nil {
		return nil, err
	}

	retry := a.cfg.Retry
	if attempts > 0 {
		retry.MaxAttempts = attempts
	}

	gen := exercise.New(provider, exercise.ConfigFromLLM(a.cfg.LLM), a.log)
	return exercise.WithRetry(gen, retry), nil
}

func (a *app) clozeService(ctx context.Context, attempts int) (*exercise.Service, error) {
	gen, err := a.generator(ctx, attempts)
	if err != nil {
		return nil, err
	}
	return exercise.NewService(gen, a.log), nil
}

func (a *app) historyService() *history.Service {
	return history.NewService(a.store.HistoryRepo(), a.cfg.History.Limit, a.log)
}

// dictionaryService chains the Redis cache (when configured and reachable)
// and the per-user store cache in front of the Free Dictionary API.
func (a *app) dictionaryService(ctx context.Context) *dictionary.Service {
	var caches []dictionary.Cache
	if a.cfg.Redis.Addr != "" {
		rc, err := cache.NewWordCache(ctx, cache.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			TTL:      a.cfg.Redis.TTL,
		}, a.log)
		if err != nil {
			a.log.Warn("redis word cache unavailable", "addr", a.cfg.Redis.Addr, "error", err)
		} else {
			caches = append(caches, rc)
			a.closers = append(a.closers, func() { rc.Close() })
		}
	}
	caches = append(caches, dictionary.NewStoreCache(a.store.WordCacheRepo()))

	client := dictionary.NewClient(a.cfg.Dictionary.BaseURL, a.cfg.Dictionary.Timeout, a.log)
	return dictionary.NewService(client, a.log, caches...)
}
