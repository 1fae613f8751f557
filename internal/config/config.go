package config

import (
	"strings"
	"time"

	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/llm"
	"github.com/abhisek/cloze/internal/store"
)

// Config is the root application configuration.
type Config struct {
	// Env selects the log format: "production" logs JSON, anything else
	// logs human-readable console output.
	Env string `yaml:"env" env:"CLOZE_ENV" env-default:"development"`

	Database   DatabaseConfig       `yaml:"database"`
	LLM        llm.Config           `yaml:"llm"`
	Retry      exercise.RetryConfig `yaml:"retry"`
	HTTP       HTTPConfig           `yaml:"http"`
	Redis      RedisConfig          `yaml:"redis"`
	Dictionary DictionaryConfig     `yaml:"dictionary"`
	History    HistoryConfig        `yaml:"history"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"CLOZE_DB_DRIVER" env-default:"sqlite"`

	// DSN is a file path for sqlite and a connection URL for postgres.
	// An empty sqlite DSN resolves to store.DefaultDBPath.
	DSN string `yaml:"dsn" env:"CLOZE_DB_DSN"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"CLOZE_HTTP_ADDR" env-default:":8080"`
	CORSOrigins     string        `yaml:"cors_origins" env:"CLOZE_CORS_ORIGINS" env-default:"*"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"CLOZE_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"CLOZE_HTTP_WRITE_TIMEOUT" env-default:"90s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"CLOZE_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// RedisConfig configures the optional word lookup cache. An empty Addr
// disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CLOZE_WORD_CACHE_TTL" env-default:"720h"`
}

// DictionaryConfig configures the word lookup upstream.
type DictionaryConfig struct {
	BaseURL string        `yaml:"base_url" env:"CLOZE_DICTIONARY_BASE_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout time.Duration `yaml:"timeout" env:"CLOZE_DICTIONARY_TIMEOUT" env-default:"10s"`
}

// HistoryConfig bounds stored history.
type HistoryConfig struct {
	Limit int `yaml:"limit" env:"CLOZE_HISTORY_LIMIT" env-default:"50"`
}

// ResolveDSN returns the DSN to open. For sqlite it applies the default
// path and creates the parent directory of a plain file path.
func (d DatabaseConfig) ResolveDSN() (string, error) {
	if d.Driver != store.DriverSQLite {
		return d.DSN, nil
	}
	switch {
	case d.DSN == "":
		return store.DefaultDBPath()
	case d.DSN == ":memory:", strings.HasPrefix(d.DSN, "file:"):
		return d.DSN, nil
	default:
		return d.DSN, store.EnsureDir(d.DSN)
	}
}

// Origins splits CORSOrigins on commas.
func (h HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(h.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
