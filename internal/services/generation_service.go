// Package services – GenerationService
//
// GenerationService runs one generation request end to end: it validates
// the prompt, resolves the content type, opens or resumes the chat session,
// records the user turn, asks the model and records the assistant turn and
// the generated content. The steps are not one transaction; a failure part
// way leaves the rows written so far, so a failed stream keeps the user
// message without an answer.
package services

import (
	"context"
	"errors"
	"iter"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/llm"
	"github.com/tbourn/go-content-studio/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxPromptRunes = 4000
	sessionTitleRunes     = 50
)

// Generator is the completion backend. *llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	GenerateStream(ctx context.Context, prompt, systemPrompt string) iter.Seq[llm.Chunk]
	CheckConnection(ctx context.Context) bool
	Models() []string
}

// GenerateRequest is one generation ask. Tone and Length may be empty, in
// which case the content kind's defaults apply.
type GenerateRequest struct {
	ContentType string
	Prompt      string
	Tone        string
	Length      string
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	Session *domain.ChatSession      `json:"session"`
	Content *domain.GeneratedContent `json:"content"`
}

// StreamHooks receives progress of a streamed generation. Both are optional.
type StreamHooks struct {
	// OnSession is called once, after the session is resolved and before
	// the model is asked.
	OnSession func(*domain.ChatSession)
	// OnDelta is called for every text fragment in arrival order.
	OnDelta func(string)
}

// GenerationService coordinates prompting and persistence.
type GenerationService struct {
	DB  *gorm.DB
	LLM Generator

	// MaxPromptRunes caps the user prompt; <= 0 uses the default.
	MaxPromptRunes int
}

// NewGenerationService wires a GenerationService.
func NewGenerationService(db *gorm.DB, gen Generator, maxPromptRunes int) *GenerationService {
	if maxPromptRunes <= 0 {
		maxPromptRunes = defaultMaxPromptRunes
	}
	return &GenerationService{DB: db, LLM: gen, MaxPromptRunes: maxPromptRunes}
}

// CheckConnection reports whether the completion backend is reachable with
// the configured credential.
func (s *GenerationService) CheckConnection(ctx context.Context) bool {
	return s.LLM.CheckConnection(ctx)
}

// Models lists the model ids the backend offers.
func (s *GenerationService) Models() []string { return s.LLM.Models() }

// ContentTypes lists the content types a request may name.
func (s *GenerationService) ContentTypes(ctx context.Context) ([]domain.ContentType, error) {
	return repo.ListContentTypes(ctx, s.DB)
}

// generation is a request that passed validation and has its user turn stored.
type generation struct {
	userID      string
	session     *domain.ChatSession
	contentType *domain.ContentType
	prompt      string
	tone        domain.Tone
	length      domain.Length
	built       string
}

// Generate produces content in one call and returns the session it was
// recorded in together with the stored content.
func (s *GenerationService) Generate(ctx context.Context, sc domain.SessionContext, req GenerateRequest) (*GenerateResult, error) {
	ctx, span := otel.Tracer("services/GenerationService").Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", sc.UserID),
			attribute.String("session.id", sc.ConversationID),
		),
	)
	defer span.End()

	g, err := s.begin(ctx, sc, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	text, err := s.LLM.Generate(ctx, g.built, "")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fromLLM(err)
	}
	return s.finish(ctx, g, text)
}

// Stream is Generate with incremental output. Text fragments reach
// hooks.OnDelta as they arrive; the assistant turn and the content row are
// stored only after the stream ends normally. A stream failure returns an
// ErrUpstream or ErrTransport error and stores nothing further.
func (s *GenerationService) Stream(ctx context.Context, sc domain.SessionContext, req GenerateRequest, hooks StreamHooks) (*GenerateResult, error) {
	ctx, span := otel.Tracer("services/GenerationService").Start(ctx, "Stream",
		trace.WithAttributes(
			attribute.String("user.id", sc.UserID),
			attribute.String("session.id", sc.ConversationID),
		),
	)
	defer span.End()

	g, err := s.begin(ctx, sc, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if hooks.OnSession != nil {
		hooks.OnSession(g.session)
	}

	var (
		text  strings.Builder
		ended bool
	)
	for chunk := range s.LLM.GenerateStream(ctx, g.built, "") {
		switch chunk.Kind {
		case llm.ChunkData:
			text.WriteString(chunk.Text)
			if hooks.OnDelta != nil {
				hooks.OnDelta(chunk.Text)
			}
		case llm.ChunkEnd:
			ended = true
		case llm.ChunkFailure:
			span.SetStatus(codes.Error, chunk.Err.Error())
			return nil, fromLLM(chunk.Err)
		}
	}
	if !ended {
		// the sequence stopped without a terminal chunk: the caller went away
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &Error{Kind: ErrTransport, Msg: "content stream ended unexpectedly"}
	}
	span.SetAttributes(attribute.Int("llm.chars", text.Len()))
	return s.finish(ctx, g, text.String())
}

// begin validates req, resolves the content type and session, and stores
// the user turn.
func (s *GenerationService) begin(ctx context.Context, sc domain.SessionContext, req GenerateRequest) (*generation, error) {
	if sc.UserID == "" {
		return nil, newError(ErrAuth, "not signed in")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, newError(ErrValidation, "please enter a prompt")
	}
	if max := s.maxPrompt(); utf8.RuneCountInString(prompt) > max {
		return nil, newError(ErrValidation, "prompt too long: max %d characters", max)
	}
	tone, ok := domain.ParseTone(req.Tone)
	if !ok {
		return nil, newError(ErrValidation, "unknown tone %q", req.Tone)
	}
	length, ok := domain.ParseLength(req.Length)
	if !ok {
		return nil, newError(ErrValidation, "unknown length %q", req.Length)
	}

	ct, err := repo.GetContentTypeByName(ctx, s.DB, req.ContentType)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, newError(ErrValidation, "unknown content type %q", req.ContentType)
	}
	if err != nil {
		return nil, err
	}
	if kind, ok := domain.ParseContentKind(ct.Name); ok {
		spec, _ := kind.Spec()
		if tone == domain.ToneUnspecified {
			tone = spec.DefaultTone
		}
		if length == domain.LengthUnspecified {
			length = spec.DefaultLength
		}
	}

	var session *domain.ChatSession
	if sc.ConversationID != "" {
		session, err = repo.GetSession(ctx, s.DB, sc.ConversationID, sc.UserID)
		if err != nil {
			return nil, notFound(err, "session")
		}
	} else {
		session, err = repo.CreateSession(ctx, s.DB, sc.UserID, SessionTitle(prompt), &ct.ID)
		if err != nil {
			return nil, err
		}
		session.ContentTypeName = ct.Name
	}

	if _, err := repo.AddMessage(ctx, s.DB, session.ID, domain.RoleUser, prompt); err != nil {
		return nil, err
	}

	return &generation{
		userID:      sc.UserID,
		session:     session,
		contentType: ct,
		prompt:      prompt,
		tone:        tone,
		length:      length,
		built:       llm.BuildPrompt(ct.Name, prompt, tone, length),
	}, nil
}

// finish stores the assistant turn and the generated content.
func (s *GenerationService) finish(ctx context.Context, g *generation, text string) (*GenerateResult, error) {
	if _, err := repo.AddMessage(ctx, s.DB, g.session.ID, domain.RoleAssistant, text); err != nil {
		return nil, err
	}
	sessionID := g.session.ID
	content := &domain.GeneratedContent{
		UserID:           g.userID,
		SessionID:        &sessionID,
		ContentTypeID:    g.contentType.ID,
		Prompt:           g.prompt,
		GeneratedText:    text,
		Tone:             g.tone,
		LengthPreference: g.length,
	}
	if err := repo.SaveContent(ctx, s.DB, content); err != nil {
		return nil, err
	}
	content.ContentTypeName = g.contentType.Name
	return &GenerateResult{Session: g.session, Content: content}, nil
}

func (s *GenerationService) maxPrompt() int {
	if s.MaxPromptRunes > 0 {
		return s.MaxPromptRunes
	}
	return defaultMaxPromptRunes
}

// SessionTitle derives a session title from the first prompt: its first 50
// characters, with "..." appended when the prompt is longer.
func SessionTitle(prompt string) string {
	prompt = strings.Join(strings.Fields(prompt), " ")
	if utf8.RuneCountInString(prompt) <= sessionTitleRunes {
		return prompt
	}
	return string([]rune(prompt)[:sessionTitleRunes]) + "..."
}
