// Package services – SessionService
//
// SessionService lists, opens and renames chat sessions. Sessions are
// created by GenerationService on the first prompt of a conversation.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 1000
	maxTitleRunes       = 255
)

// SessionService manages chat sessions of a user.
type SessionService struct {
	DB *gorm.DB
}

// NewSessionService returns a SessionService over db.
func NewSessionService(db *gorm.DB) *SessionService { return &SessionService{DB: db} }

// SessionDetail is a session with its messages in order.
type SessionDetail struct {
	Session  *domain.ChatSession  `json:"session"`
	Messages []domain.ChatMessage `json:"messages"`
}

// List returns the user's sessions, most recently active first.
func (s *SessionService) List(ctx context.Context, userID string, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}
	return repo.ListSessions(ctx, s.DB, userID, limit)
}

// Stats returns how many sessions the user has and when the latest one was
// last active. Handlers derive list ETags from it.
func (s *SessionService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.SessionsStats(ctx, s.DB, userID)
}

// Get opens a session owned by userID together with its messages.
func (s *SessionService) Get(ctx context.Context, userID, id string) (*SessionDetail, error) {
	ctx, span := otel.Tracer("services/SessionService").Start(ctx, "Get",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("session.id", id),
		),
	)
	defer span.End()

	sess, err := repo.GetSession(ctx, s.DB, id, userID)
	if err != nil {
		return nil, notFound(err, "session")
	}
	msgs, err := repo.ListMessages(ctx, s.DB, sess.ID, 0)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return &SessionDetail{Session: sess, Messages: msgs}, nil
}

// Rename sets a session title. Whitespace runs collapse to one space.
func (s *SessionService) Rename(ctx context.Context, userID, id, title string) error {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return newError(ErrValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return newError(ErrValidation, "title too long: max %d characters", maxTitleRunes)
	}
	return notFound(repo.UpdateSessionTitle(ctx, s.DB, id, userID, title), "session")
}
