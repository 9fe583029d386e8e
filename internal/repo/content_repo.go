// This file holds the accessors for generated content: saving results,
// listing a user's history and flipping the favorite flag.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

const contentColumns = "generated_content.*, content_types.name AS content_type_name"

func contentWithType(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.GeneratedContent{}).
		Select(contentColumns).
		Joins("LEFT JOIN content_types ON content_types.id = generated_content.content_type_id")
}

// SaveContent persists c, assigning its id and creation time.
func SaveContent(ctx context.Context, db *gorm.DB, c *domain.GeneratedContent) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Omit("User", "Session", "ContentType").Create(c).Error
}

// ListContent returns a user's generated content newest first.
// limit <= 0 means no limit.
func ListContent(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.GeneratedContent, error) {
	var out []domain.GeneratedContent
	q := contentWithType(ctx, db).
		Where("generated_content.user_id = ?", userID).
		Order("generated_content.created_at DESC, generated_content.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetContent fetches one item by id and owner.
func GetContent(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GeneratedContent, error) {
	var c domain.GeneratedContent
	err := contentWithType(ctx, db).
		Where("generated_content.id = ? AND generated_content.user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ToggleFavorite negates is_favorite and returns the new value.
func ToggleFavorite(ctx context.Context, db *gorm.DB, id, userID string) (bool, error) {
	var fav bool
	err := Execute(ctx, db, func(tx *gorm.DB) error {
		res := tx.Model(&domain.GeneratedContent{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_favorite", gorm.Expr("NOT is_favorite"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var row struct{ IsFavorite bool }
		if err := tx.Model(&domain.GeneratedContent{}).Select("is_favorite").Where("id = ?", id).Take(&row).Error; err != nil {
			return err
		}
		fav = row.IsFavorite
		return nil
	})
	return fav, err
}
