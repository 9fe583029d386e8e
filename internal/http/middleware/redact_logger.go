// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements AccessLog, the structured access logger. It attaches
// a request-scoped zerolog.Logger (request id, method, route and, when
// traced, trace id) for handlers and emits one line per request with
// obvious PII scrubbed.
//
// Bodies are never logged: prompts and generated text stay out of the logs.
// Sensitive headers (Authorization, Cookie, Set-Cookie plus any configured)
// are masked; emails, phone numbers and UUIDs are redacted from the query
// string and the remaining header values.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// RedactOptions configures AccessLog.
type RedactOptions struct {
	// MaskHeaders are extra header names (case-insensitive) whose values are
	// replaced with "[REDACTED]".
	MaskHeaders []string
	// LogHeaders adds the scrubbed request headers to each line.
	LogHeaders bool
}

var (
	// UUIDs first: the phone pattern would otherwise eat their digit groups.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redact scrubs ids, emails and phone numbers from s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// AccessLog returns the access-log middleware. Level follows the outcome:
// error for 5xx or collected gin errors, warn for 4xx, info otherwise.
func AccessLog(opts RedactOptions) gin.HandlerFunc {
	mask := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mask[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		lc := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path)
		// otelgin runs first, so a sampled request carries its span here
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			lc = lc.Str("trace_id", sc.TraceID().String())
		}
		l := lc.Logger()
		c.Set(loggerKey, &l)

		safeQuery := Redact(c.Request.URL.RawQuery)
		var safeHeaders map[string]string
		if opts.LogHeaders {
			safeHeaders = make(map[string]string, len(c.Request.Header))
			for k, vv := range c.Request.Header {
				if _, ok := mask[strings.ToLower(k)]; ok {
					safeHeaders[k] = "[REDACTED]"
					continue
				}
				safeHeaders[k] = Redact(strings.Join(vv, ", "))
			}
		}

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case len(c.Errors) > 0 || status >= 500:
			ev = l.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400:
			ev = l.Warn()
		}
		ev = ev.
			Str("user_id", UserID(c)).
			Str("query", safeQuery).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if safeHeaders != nil {
			ev = ev.Interface("headers", safeHeaders)
		}
		ev.Msg("http_request")
	}
}
