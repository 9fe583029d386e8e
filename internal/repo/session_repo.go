// This file holds the accessors for chat sessions. Every lookup is scoped to
// the owning user so a foreign id behaves exactly like a missing one.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

const sessionColumns = "chat_sessions.*, content_types.name AS content_type_name"

func sessionsWithType(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Select(sessionColumns).
		Joins("LEFT JOIN content_types ON content_types.id = chat_sessions.content_type_id")
}

// CreateSession inserts a new session owned by userID.
func CreateSession(ctx context.Context, db *gorm.DB, userID, title string, contentTypeID *uint) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	s := &domain.ChatSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         title,
		ContentTypeID: contentTypeID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns the user's sessions, most recently active first,
// with the content type name joined in. limit <= 0 means no limit.
func ListSessions(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	q := sessionsWithType(ctx, db).
		Where("chat_sessions.user_id = ?", userID).
		Order("chat_sessions.updated_at DESC, chat_sessions.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetSession fetches a session by id and owner.
func GetSession(ctx context.Context, db *gorm.DB, id, userID string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := sessionsWithType(ctx, db).
		Where("chat_sessions.id = ? AND chat_sessions.user_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSessionTitle renames a session. ErrNotFound when missing or not owned.
func UpdateSessionTitle(ctx context.Context, db *gorm.DB, id, userID, title string) error {
	res := db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"title": title, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
