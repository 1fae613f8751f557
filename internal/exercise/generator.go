package exercise

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/cloze/internal/llm"
	"github.com/abhisek/cloze/internal/logger"
)

// Purpose labels generation requests in the LLM event log.
const Purpose = "cloze-gen"

// Generator produces a cloze exercise for a normalized word list.
type Generator interface {
	Generate(ctx context.Context, words []string) (*Exercise, error)
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *LLMGenerator {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Shuffler == nil {
		cfg.Shuffler = globalShuffler{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log}
}

// Generate runs one request through the pipeline: prompt, completion,
// JSON recovery, validation, shuffling and projection.
func (g *LLMGenerator) Generate(ctx context.Context, words []string) (*Exercise, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	text, err := g.complete(ctx, BuildPrompt(g.config.SystemPrompt, words))
	if err != nil {
		return nil, err
	}

	parsed, err := parseCompletion(text)
	if err != nil {
		return nil, err
	}

	d, err := validate(parsed)
	if err != nil {
		return nil, err
	}

	ex := project(d, arrange(d, g.config.Shuffler))

	if missing, unused := crossCheck(ex); len(missing) > 0 || len(unused) > 0 {
		g.log.Warn("article placeholders do not match options",
			"placeholders_without_options", missing,
			"options_without_placeholders", unused,
		)
	}

	g.log.Debug("cloze exercise generated",
		"words", len(words),
		"blanks", len(ex.Options),
		"details", len(ex.OptionsDetail),
		"annotations", len(ex.Annotations),
	)
	return ex, nil
}

// complete issues the single generation request and returns the completion
// with any markdown fence removed.
func (g *LLMGenerator) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	req := llm.UserPrompt(prompt)
	req.Temperature = g.config.Temperature
	req.MaxTokens = g.config.MaxTokens
	req.JSONMode = g.config.JSONMode

	resp, err := g.provider.Generate(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &llm.ErrTimeout{After: g.config.Timeout, Err: err}
		}
		return "", err
	}

	text := llm.StripCodeFences(strings.TrimSpace(resp.Text))
	if text == "" {
		return "", &llm.ErrEmptyResponse{Model: resp.Model}
	}
	return text, nil
}
