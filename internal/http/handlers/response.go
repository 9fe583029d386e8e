// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. Errors
// always use ErrorResponse with a stable code; service errors are mapped to
// a status and code in one place (classify) so JSON responses and SSE error
// events agree.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "session not found"
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/http/middleware"
	"github.com/tbourn/go-content-studio/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users
	Message string `json:"message" example:"content not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, errorBody(c, code, msg))
}

// Fail is fail for callers outside the package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps err with classify and aborts. The cause of an unexpected
// error is attached to the gin context for the access log, never sent.
func failErr(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	fail(c, status, code, msg)
}

// classify turns an error into (status, code, message).
func classify(err error) (int, string, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, services.ErrAuth):
		return http.StatusUnauthorized, ErrCodeUnauthorized, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, ErrCodeConflict, err.Error()
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway, ErrCodeGenerationFailed, err.Error()
	case errors.Is(err, services.ErrTransport):
		return http.StatusBadGateway, ErrCodeLLMUnavailable, err.Error()
	case errors.Is(err, services.ErrNotImplemented):
		return http.StatusNotImplemented, ErrCodeNotImplemented, err.Error()
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out"
	}
	return http.StatusInternalServerError, ErrCodeInternal, "internal server error"
}

func errorBody(c *gin.Context, code, msg string) ErrorResponse {
	return ErrorResponse{
		RequestID: c.Writer.Header().Get(middleware.HeaderRequestID),
		Code:      code,
		Message:   msg,
	}
}

// bindJSON decodes the body into dst, failing the request on a malformed
// or oversized body.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return false
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
