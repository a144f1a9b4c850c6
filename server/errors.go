package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/dealflow/match"
)

// Error codes carried in the error envelope.
const (
	CodeInvalidInput        = "invalid_input"
	CodeMatchingUnavailable = "matching_unavailable"
	CodeCorpusNotLoaded     = "corpus_not_loaded"
	CodeNotFound            = "not_found"
	CodeMethodNotAllowed    = "method_not_allowed"
	CodeInternal            = "internal_error"
	CodeRequestCanceled     = "request_canceled"
)

// StatusClientClosedRequest is recorded when the client goes away before the
// request finishes.
const StatusClientClosedRequest = 499

// APIError is the body of every non-2xx response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(c)
	c.AbortWithStatusJSON(status, e)
}

// classify maps a matcher error to a status, code and client-safe message.
// Provider error text is never echoed; it can carry hosts or keys.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, match.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput, err.Error()
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, CodeRequestCanceled, "request canceled"
	case errors.Is(err, match.ErrCorpusNotLoaded):
		return http.StatusServiceUnavailable, CodeCorpusNotLoaded,
			"signal corpus is not loaded yet, retry shortly"
	case errors.Is(err, match.ErrTimeout):
		return http.StatusServiceUnavailable, CodeMatchingUnavailable,
			"AI provider timed out, check provider health and retry"
	case errors.Is(err, match.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, CodeMatchingUnavailable,
			"AI provider is unavailable, check provider configuration and health"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}
