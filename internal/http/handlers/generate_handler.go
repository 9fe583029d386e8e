// Generation HTTP handlers.
//
//   - GET  /content-types     (catalog plus allowed tones and lengths)
//   - GET  /llm/status        (is the model reachable)
//   - GET  /llm/models        (model ids offered)
//   - POST /generate          (one-shot generation, Idempotency-Key aware)
//   - POST /generate/stream   (server-sent events)
//
// Streaming protocol: one "session" event once the session is resolved,
// a "delta" event per text fragment, then exactly one of "done" (with the
// stored result) or "error" (with the error envelope). Validation failures
// before the session event are plain JSON errors.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/http/middleware"
	"github.com/tbourn/go-content-studio/internal/services"
)

// HeaderReplayed marks a response served from a stored result.
const HeaderReplayed = "Idempotency-Replayed"

// GenerateRequest is the generation payload. Tone and length default to
// the content type's own defaults; session_id continues a session.
type GenerateRequest struct {
	ContentType string `json:"content_type" example:"Blog Post"`
	Prompt      string `json:"prompt" example:"Why remote teams need written rituals"`
	Tone        string `json:"tone,omitempty" example:"informative"`
	Length      string `json:"length,omitempty" example:"long"`
	SessionID   string `json:"session_id,omitempty" format:"uuid"`
}

// ContentTypesResponse lists what a generation may ask for.
type ContentTypesResponse struct {
	ContentTypes []domain.ContentType `json:"content_types"`
	Tones        []domain.Tone        `json:"tones"`
	Lengths      []domain.Length      `json:"lengths"`
}

// LLMStatusResponse reports model connectivity.
type LLMStatusResponse struct {
	Connected bool `json:"connected"`
}

// ModelsResponse lists model ids.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// DeltaEvent is the payload of a "delta" stream event.
type DeltaEvent struct {
	Text string `json:"text"`
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizePrompt normalizes line endings, collapses blank-line runs and
// trims surrounding whitespace.
func sanitizePrompt(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func (r GenerateRequest) toService() services.GenerateRequest {
	return services.GenerateRequest{
		ContentType: r.ContentType,
		Prompt:      sanitizePrompt(r.Prompt),
		Tone:        r.Tone,
		Length:      r.Length,
	}
}

func sessionContext(c *gin.Context, sessionID string) domain.SessionContext {
	return domain.SessionContext{UserID: userID(c), ConversationID: strings.TrimSpace(sessionID)}
}

// ListContentTypes godoc
// @ID          listContentTypes
// @Summary     Content types
// @Tags        Generation
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.ContentTypesResponse
// @Router      /content-types [get]
func (h *Handlers) ListContentTypes(c *gin.Context) {
	types, err := h.gen.ContentTypes(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ContentTypesResponse{ContentTypes: types, Tones: domain.Tones(), Lengths: domain.Lengths()})
}

// LLMStatus godoc
// @ID          llmStatus
// @Summary     Model connectivity
// @Tags        Generation
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.LLMStatusResponse
// @Router      /llm/status [get]
func (h *Handlers) LLMStatus(c *gin.Context) {
	ok(c, http.StatusOK, LLMStatusResponse{Connected: h.gen.CheckConnection(c.Request.Context())})
}

// LLMModels godoc
// @ID          llmModels
// @Summary     Available models
// @Tags        Generation
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.ModelsResponse
// @Router      /llm/models [get]
func (h *Handlers) LLMModels(c *gin.Context) {
	ok(c, http.StatusOK, ModelsResponse{Models: h.gen.Models()})
}

// Generate godoc
// @ID          generate
// @Summary     Generate content
// @Description Runs one generation and stores it in the caller's history.
// @Description With an Idempotency-Key, a retry returns the stored result and sets Idempotency-Replayed.
// @Tags        Generation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                    false  "Key for safe retries"
// @Param       body             body      handlers.GenerateRequest  true   "What to generate"
// @Success     201              {object}  services.GenerateResult
// @Failure     400              {object}  handlers.ErrorResponse  "Invalid prompt, type, tone or length"
// @Failure     404              {object}  handlers.ErrorResponse  "Session not found"
// @Failure     502              {object}  handlers.ErrorResponse  "Model failure"
// @Router      /generate [post]
func (h *Handlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	uid := userID(c)
	scope := middleware.IdempotencyScope(c)
	key, _ := middleware.GetIdempotencyKey(c)

	if key != "" && h.idem != nil {
		prev, found, err := h.idem.Replay(ctx, uid, scope, key)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency replay failed")
		} else if found {
			c.Header(HeaderReplayed, "true")
			ok(c, http.StatusCreated, prev)
			return
		}
	}

	res, err := h.gen.Generate(ctx, sessionContext(c, req.SessionID), req.toService())
	if err != nil {
		failErr(c, err)
		return
	}

	if key != "" && h.idem != nil {
		if err := h.idem.Remember(ctx, uid, scope, key, http.StatusCreated, res); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
		}
	}
	ok(c, http.StatusCreated, res)
}

// GenerateStream godoc
// @ID          generateStream
// @Summary     Generate content as a stream
// @Description Server-sent events: session, delta*, then done or error.
// @Tags        Generation
// @Accept      json
// @Produce     text/event-stream
// @Security    BearerAuth
// @Param       body  body      handlers.GenerateRequest  true  "What to generate"
// @Success     200   {string}  string                    "event stream"
// @Failure     400   {object}  handlers.ErrorResponse    "Invalid prompt, type, tone or length"
// @Router      /generate/stream [post]
func (h *Handlers) GenerateStream(c *gin.Context) {
	var req GenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	w := c.Writer
	started := false
	emit := func(event string, data any) {
		c.SSEvent(event, data)
		w.Flush()
	}

	end := middleware.StreamOpened()
	res, err := h.gen.Stream(ctx, sessionContext(c, req.SessionID), req.toService(), services.StreamHooks{
		OnSession: func(s *domain.ChatSession) {
			hdr := w.Header()
			hdr.Set("Content-Type", "text/event-stream")
			hdr.Set("Cache-Control", "no-cache")
			hdr.Set("Connection", "keep-alive")
			hdr.Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
			emit("session", s)
		},
		OnDelta: func(text string) { emit("delta", DeltaEvent{Text: text}) },
	})

	switch {
	case err == nil:
		end("done")
		emit("done", res)
	case !started:
		end("error")
		failErr(c, err)
	default:
		outcome := "error"
		if errors.Is(ctx.Err(), context.Canceled) {
			outcome = "canceled"
		}
		end(outcome)
		status, code, msg := classify(err)
		middleware.LoggerFrom(c).Warn().Err(err).Int("status", status).Msg("stream failed")
		emit("error", errorBody(c, code, msg))
	}
}
