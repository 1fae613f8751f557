package exercise

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/abhisek/cloze/internal/logger"
	"github.com/abhisek/cloze/internal/wordlist"
)

// Result is the outcome of one GenerateCloze call. On success the exercise
// fields are inlined next to "success"; on failure only "error" is set.
type Result struct {
	Success bool `json:"success"`
	*Exercise
	Error string `json:"error,omitempty"`

	// Kind classifies a failure for transports that map it to a status.
	Kind Kind `json:"-"`
}

// Succeeded wraps ex as a successful Result.
func Succeeded(ex *Exercise) Result {
	return Result{Success: true, Exercise: ex}
}

// Failed wraps err as a failed Result with a user-facing message.
func Failed(err error) Result {
	return Result{Error: UserMessage(err), Kind: KindOf(err)}
}

// Service is the entry point for cloze generation. It never returns an
// error; every outcome is a Result.
type Service struct {
	gen Generator
	log *logger.Logger
}

// NewService creates a Service around gen.
func NewService(gen Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gen: gen, log: log}
}

// GenerateCloze normalizes raw into a word list and generates an exercise
// for it.
func (s *Service) GenerateCloze(ctx context.Context, raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cloze generation panicked", "panic", r, "stack", string(debug.Stack()))
			res = Failed(fmt.Errorf("panic: %v", r))
		}
	}()

	words := wordlist.Normalize(raw)
	ex, err := s.gen.Generate(ctx, words)
	if err != nil {
		s.log.Warn("cloze generation failed",
			"kind", KindOf(err),
			"words", len(words),
			"error", err,
		)
		return Failed(err)
	}
	return Succeeded(ex)
}
