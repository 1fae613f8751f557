package llm

import (
	"fmt"
	"net/http"
	"time"
)

// ErrConfiguration indicates a required setting, usually a credential, is
// missing or blank. It is returned before any network call.
type ErrConfiguration struct {
	Setting string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("%s is not configured: set it in the environment or the config file", e.Setting)
}

// ErrTimeout indicates the request did not complete within its deadline.
// The in-flight request has been cancelled.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("generation request timed out after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrUpstream indicates the generation endpoint answered with a non-success
// status, or could not be reached at all (StatusCode 0).
type ErrUpstream struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ErrUpstream) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("upstream unreachable: %s", e.Message)
	case e.Err != nil:
		return fmt.Sprintf("upstream unreachable: %v", e.Err)
	default:
		return "upstream unreachable"
	}
}

func (e *ErrUpstream) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth another attempt by a caller
// that chooses to retry: rate limits, server errors and transport failures.
func (e *ErrUpstream) Transient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// ErrEmptyResponse indicates the transport succeeded but the completion
// carried no text.
type ErrEmptyResponse struct {
	Model string
}

func (e *ErrEmptyResponse) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("empty completion from %s", e.Model)
	}
	return "empty completion"
}
