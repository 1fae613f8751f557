package llm

import (
	"fmt"
	"time"
)

// Config holds all LLM provider configuration. Struct tags are read by
// cleanenv; see internal/config.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "deepseek", "openai", "openrouter", "anthropic", "gemini", "mock"
	Provider string `yaml:"provider" env:"CLOZE_LLM_PROVIDER" env-default:"deepseek"`

	DeepSeek   DeepSeekConfig   `yaml:"deepseek"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini"`

	// Timeout bounds a single generation request. Default: 60s.
	Timeout time.Duration `yaml:"timeout" env:"CLOZE_LLM_TIMEOUT" env-default:"60s"`

	Temperature float64 `yaml:"temperature" env:"CLOZE_LLM_TEMPERATURE" env-default:"0.7"`

	// MaxTokens caps completions. Zero leaves the limit to the provider.
	MaxTokens int `yaml:"max_tokens" env:"CLOZE_LLM_MAX_TOKENS" env-default:"0"`

	// JSONMode asks providers that support it for a JSON object response.
	JSONMode bool `yaml:"json_mode" env:"CLOZE_LLM_JSON_MODE" env-default:"false"`
}

// DeepSeekConfig holds DeepSeek-specific configuration.
type DeepSeekConfig struct {
	APIKey  string `yaml:"api_key" env:"DEEPSEEK_API_KEY"`
	Model   string `yaml:"model" env:"DEEPSEEK_MODEL" env-default:"deepseek-chat"`
	BaseURL string `yaml:"base_url" env:"DEEPSEEK_BASE_URL" env-default:"https://api.deepseek.com/v1"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"` // Optional. Any OpenAI-compatible API.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENROUTER_API_KEY"`
	Model   string `yaml:"model" env:"OPENROUTER_MODEL" env-default:"deepseek/deepseek-chat"`
	BaseURL string `yaml:"base_url" env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-haiku"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-flash"`
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL"` // Optional. Defaults to the public Gemini API.
}

// DefaultConfig returns a Config with the same defaults the env tags carry.
func DefaultConfig() Config {
	return Config{
		Provider: "deepseek",
		DeepSeek: DeepSeekConfig{
			Model:   "deepseek-chat",
			BaseURL: "https://api.deepseek.com/v1",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model:   "deepseek/deepseek-chat",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Timeout:     60 * time.Second,
		Temperature: 0.7,
	}
}

// Validate rejects settings that can never work. A blank credential is not
// an error here; it surfaces per request as *ErrConfiguration.
func (c Config) Validate() error {
	switch c.Provider {
	case "deepseek", "openai", "openrouter", "anthropic", "gemini", "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.Timeout)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be within [0, 2], got %g", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("LLM max tokens must not be negative, got %d", c.MaxTokens)
	}
	return nil
}

// CredentialSetting names the environment variable that holds the key for
// the selected provider, or "" when none is needed.
func (c Config) CredentialSetting() string {
	switch c.Provider {
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	}
	return ""
}
