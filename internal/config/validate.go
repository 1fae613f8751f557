package config

import (
	"fmt"

	"github.com/abhisek/cloze/internal/store"
)

// Validate rejects settings that can never work. Missing provider
// credentials are not rejected here; they fail each generation request.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	switch c.Database.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q (got %q)", store.DriverSQLite, store.DriverPostgres, c.Database.Driver)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1 (got %d)", c.Retry.MaxAttempts)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be >= 1 (got %d)", c.History.Limit)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must be >= 0 (got %s)", c.Redis.TTL)
	}
	if c.Dictionary.Timeout <= 0 {
		return fmt.Errorf("dictionary.timeout must be > 0 (got %s)", c.Dictionary.Timeout)
	}

	return nil
}
