package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/cloze/internal/exercise"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code},
	})
}

// statusForKind maps a generation failure to an HTTP status.
func statusForKind(kind exercise.Kind) int {
	switch kind {
	case exercise.KindConfiguration:
		return http.StatusServiceUnavailable
	case exercise.KindTimeout:
		return http.StatusGatewayTimeout
	case exercise.KindUpstream, exercise.KindEmptyResponse, exercise.KindMalformedResponse, exercise.KindSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
