package exercise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/cloze/internal/llm"
)

// ErrMalformedResponse indicates the completion could not be recovered as
// JSON, neither directly nor from its outermost braces.
type ErrMalformedResponse struct {
	Err     error
	Preview string // first 200 characters of the completion
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("completion is not valid JSON: %v (preview: %q)", e.Err, e.Preview)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// SchemaError identifies the first field of a parsed completion that
// violates the exercise shape.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}

// Kind classifies a generation failure.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindTimeout           Kind = "timeout"
	KindUpstream          Kind = "upstream"
	KindEmptyResponse     Kind = "empty_response"
	KindMalformedResponse Kind = "malformed_response"
	KindSchema            Kind = "schema"
	KindInternal          Kind = "internal"
)

// KindOf reports which kind of failure err is.
func KindOf(err error) Kind {
	var (
		cfgErr    *llm.ErrConfiguration
		timeout   *llm.ErrTimeout
		upstream  *llm.ErrUpstream
		empty     *llm.ErrEmptyResponse
		malformed *ErrMalformedResponse
		schema    *SchemaError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &empty):
		return KindEmptyResponse
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &schema):
		return KindSchema
	default:
		return KindInternal
	}
}

// UserMessage renders err for the person who asked for the exercise.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindConfiguration:
		return err.Error()
	case KindTimeout:
		var timeout *llm.ErrTimeout
		errors.As(err, &timeout)
		return fmt.Sprintf("The generation service did not respond within %s. Please try again.", timeout.After)
	case KindUpstream:
		var upstream *llm.ErrUpstream
		errors.As(err, &upstream)
		if upstream.Message != "" {
			return "Generation service error: " + upstream.Message
		}
		return "The generation service could not be reached. Please try again."
	case KindEmptyResponse:
		return "The generation service returned an empty response. Please try again."
	case KindMalformedResponse:
		var malformed *ErrMalformedResponse
		errors.As(err, &malformed)
		return fmt.Sprintf("The generation service returned an unreadable response. Please try again. Response began: %q", malformed.Preview)
	case KindSchema:
		var schema *SchemaError
		errors.As(err, &schema)
		msg := "The generated exercise was invalid: " + schema.Message
		if schema.Field != "" && !strings.Contains(schema.Message, schema.Field) {
			msg += " (field: " + schema.Field + ")"
		}
		return msg
	default:
		return "Generation failed. Please try again later."
	}
}
