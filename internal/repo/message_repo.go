package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// AddMessage appends a message to a session and bumps the session's
// updated_at in the same transaction.
func AddMessage(ctx context.Context, db *gorm.DB, sessionID string, role domain.Role, content string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err := Execute(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&domain.ChatSession{}).
			Where("id = ?", sessionID).
			Update("updated_at", m.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a session's messages ordered (created_at ASC, id ASC).
// limit <= 0 means all.
func ListMessages(ctx context.Context, db *gorm.DB, sessionID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages returns how many messages a session holds.
func CountMessages(ctx context.Context, db *gorm.DB, sessionID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("session_id = ?", sessionID).Count(&total).Error
	return total, err
}
