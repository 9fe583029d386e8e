// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request correlation id, panic recovery and access
// to the request-scoped logger. Recommended order:
//
//  1. RequestID()
//  2. AccessLog(...) (attaches the request-scoped logger)
//  3. Recovery()
//
// so that panics and errors carry the correlation id.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// loggerKey holds the request-scoped *zerolog.Logger.
	loggerKey = "logger"
	// UserIDKey holds the authenticated user id (set by Authenticate).
	UserIDKey = "userID"

	// HeaderRequestID propagates the correlation id.
	HeaderRequestID = "X-Request-ID"
	// maxRequestIDLen bounds client-supplied ids kept as-is.
	maxRequestIDLen = 128
)

// RequestID reuses a client X-Request-ID (when short enough) or generates a
// UUIDv4, echoes it on the response and stores it in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id of the request, or "".
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	v, _ := c.Get(UserIDKey)
	return asString(v)
}

// Recovery converts a panic into a JSON 500 and logs the stack trace. When
// the response has already started (an SSE stream) only the status is set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if !c.Writer.Written() {
					abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or one carrying only the
// request id when AccessLog did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("request_id", RequestIDFrom(c)).Logger()
	return &l
}

// abort writes the shared error envelope {request_id, code, message}.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(HeaderRequestID),
		"code":       code,
		"message":    msg,
	})
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
