package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cloze.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
env: production
database:
  driver: postgres
  dsn: "postgres://u:p@localhost:5432/cloze"
llm:
  provider: openai
  timeout: 30s
  temperature: 0.4
  openai:
    model: gpt-4o
retry:
  max_attempts: 3
http:
  addr: ":9090"
  cors_origins: "https://a.example, https://b.example"
redis:
  addr: "localhost:6379"
  ttl: 1h
history:
  limit: 20
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.4, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.Origins())
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 20, cfg.History.Limit)

	// Defaults still apply to keys the file leaves out.
	assert.Equal(t, "deepseek-chat", cfg.LLM.DeepSeek.Model)
	assert.Equal(t, 10*time.Second, cfg.Dictionary.Timeout)
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CLOZE_LLM_PROVIDER", "mock")
	t.Setenv("CLOZE_HTTP_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CLOZE_CONFIG_PATH", "")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.DeepSeek.APIKey)
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.LLM.DeepSeek.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 0, cfg.LLM.MaxTokens)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, 720*time.Hour, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.HTTP.Origins())
}

func TestLoad_MissingKeyIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CLOZE_CONFIG_PATH", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.DeepSeek.APIKey)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvPathNotFound(t *testing.T) {
	t.Setenv("CLOZE_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "llm: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Database:   DatabaseConfig{Driver: "sqlite"},
		LLM:        llm.DefaultConfig(),
		Retry:      exercise.DefaultRetryConfig(),
		History:    HistoryConfig{Limit: 50},
		Dictionary: DictionaryConfig{Timeout: 10 * time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }, "unknown LLM provider"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts"},
		{"zero history", func(c *Config) { c.History.Limit = 0 }, "history.limit"},
		{"negative ttl", func(c *Config) { c.Redis.TTL = -time.Second }, "redis.ttl"},
		{"zero dictionary timeout", func(c *Config) { c.Dictionary.Timeout = 0 }, "dictionary.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveDSN(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLOZE_DB", filepath.Join(dir, "default", "cloze.db"))

	dsn, err := DatabaseConfig{Driver: "sqlite"}.ResolveDSN()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "default", "cloze.db"), dsn)
	assert.DirExists(t, filepath.Join(dir, "default"))

	path := filepath.Join(dir, "nested", "x.db")
	dsn, err = DatabaseConfig{Driver: "sqlite", DSN: path}.ResolveDSN()
	require.NoError(t, err)
	assert.Equal(t, path, dsn)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	dsn, err = DatabaseConfig{Driver: "postgres", DSN: "postgres://x"}.ResolveDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", dsn)
}

