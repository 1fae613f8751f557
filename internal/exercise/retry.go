package exercise

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/cloze/internal/llm"
)

// RetryConfig controls WithRetry. MaxAttempts below 2 disables retries.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"CLOZE_RETRY_MAX_ATTEMPTS" env-default:"1"`
	InitialWait time.Duration `yaml:"initial_wait" env:"CLOZE_RETRY_INITIAL_WAIT" env-default:"1s"`
	MaxWait     time.Duration `yaml:"max_wait" env:"CLOZE_RETRY_MAX_WAIT" env-default:"10s"`
	Multiplier  float64       `yaml:"multiplier" env:"CLOZE_RETRY_MULTIPLIER" env-default:"2"`
}

// DefaultRetryConfig makes a single attempt.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 1,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2,
	}
}

// RetryGenerator re-runs a whole generation after a retryable failure,
// waiting with exponential backoff and jitter between attempts.
type RetryGenerator struct {
	inner  Generator
	config RetryConfig
}

// WithRetry wraps gen with retry logic. With MaxAttempts below 2 it
// returns gen unchanged.
func WithRetry(gen Generator, cfg RetryConfig) Generator {
	if cfg.MaxAttempts < 2 {
		return gen
	}
	return &RetryGenerator{inner: gen, config: cfg}
}

func (r *RetryGenerator) Generate(ctx context.Context, words []string) (*Exercise, error) {
	var lastErr error
	schemaRetried := false

	for attempt := range r.config.MaxAttempts {
		ex, err := r.inner.Generate(ctx, words)
		if err == nil {
			return ex, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err, &schemaRetried) {
			return nil, err
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(r.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// retryable reports whether another attempt could succeed. Schema
// violations get one more attempt.
func retryable(err error, schemaRetried *bool) bool {
	switch KindOf(err) {
	case KindTimeout, KindEmptyResponse, KindMalformedResponse:
		return true
	case KindUpstream:
		var upstream *llm.ErrUpstream
		errors.As(err, &upstream)
		return upstream.Transient()
	case KindSchema:
		if *schemaRetried {
			return false
		}
		*schemaRetried = true
		return true
	default:
		return false
	}
}

func (r *RetryGenerator) backoff(attempt int) time.Duration {
	multiplier := r.config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	wait := float64(r.config.InitialWait) * math.Pow(multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
