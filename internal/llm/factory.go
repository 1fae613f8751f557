package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/cloze/internal/logger"
	"github.com/abhisek/cloze/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with logging.
//
// A provider whose credential is missing is not a construction error: the
// returned Provider fails every call with *ErrConfiguration so that the
// process can start and report the problem per request.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "deepseek":
		base, err = NewDeepSeekProvider(cfg.DeepSeek)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}

	var cfgErr *ErrConfiguration
	if errors.As(err, &cfgErr) {
		base = &unconfiguredProvider{setting: cfgErr.Setting, model: modelFor(cfg)}
	} else if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, log), nil
}

// unconfiguredProvider stands in for a provider that has no credential.
type unconfiguredProvider struct {
	setting string
	model   string
}

func (u *unconfiguredProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrConfiguration{Setting: u.setting}
}

func (u *unconfiguredProvider) ModelID() string {
	return u.model
}

func modelFor(cfg Config) string {
	switch cfg.Provider {
	case "deepseek":
		return cfg.DeepSeek.Model
	case "openai":
		return resolveModel(cfg.OpenAI.Model, openaiModels)
	case "openrouter":
		return cfg.OpenRouter.Model
	case "anthropic":
		return resolveModel(cfg.Anthropic.Model, anthropicModels)
	case "gemini":
		return resolveModel(cfg.Gemini.Model, geminiModels)
	}
	return cfg.Provider
}
