package exercise

import (
	"time"

	"github.com/abhisek/cloze/internal/llm"
)

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// SystemPrompt is prepended to every prompt.
	SystemPrompt string

	// Timeout bounds the generation request. The in-flight request is
	// cancelled when it expires.
	Timeout time.Duration

	Temperature float64

	// MaxTokens is the completion budget. Zero leaves it to the provider.
	MaxTokens int

	JSONMode bool

	// Shuffler permutes each blank's options. Nil uses math/rand/v2.
	Shuffler Shuffler
}

// DefaultConfig returns the standard prompt and request settings.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		Timeout:      60 * time.Second,
		Temperature:  0.7,
	}
}

// ConfigFromLLM derives the request settings from the provider config.
func ConfigFromLLM(cfg llm.Config) Config {
	c := DefaultConfig()
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.Temperature = cfg.Temperature
	c.MaxTokens = cfg.MaxTokens
	c.JSONMode = cfg.JSONMode
	return c
}
