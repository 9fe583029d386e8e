// This file provides aggregate queries: count plus latest timestamp pairs
// used for ETags in the HTTP layer, and the grouped counts behind the
// profile statistics.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// SessionsStats returns how many sessions the user has and the latest
// updated_at among them (nil when there are none).
func SessionsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatSession{}).Where("user_id = ?", userID)
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	// ORDER BY + LIMIT rather than MAX(), which SQLite returns as TEXT.
	var row struct{ UpdatedAt time.Time }
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ContentStats is the ETag counterpart of SessionsStats for generated
// content. Favorites are counted too because toggling one changes the list.
func ContentStats(ctx context.Context, db *gorm.DB, userID string) (count, favorites int64, latest *time.Time, err error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.GeneratedContent{}).Where("user_id = ?", userID)
	}
	if err = base().Count(&count).Error; err != nil {
		return 0, 0, nil, err
	}
	if count == 0 {
		return 0, 0, nil, nil
	}
	if err = base().Where("is_favorite = ?", true).Count(&favorites).Error; err != nil {
		return 0, 0, nil, err
	}
	var row struct{ CreatedAt time.Time }
	if err = base().Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return count, favorites, &row.CreatedAt, nil
}

// Bucket is one group of a grouped count.
type Bucket struct {
	Label string
	Count int64
}

// CountContentByType groups the user's content by content type name,
// largest group first.
func CountContentByType(ctx context.Context, db *gorm.DB, userID string) ([]Bucket, error) {
	var out []Bucket
	err := db.WithContext(ctx).
		Model(&domain.GeneratedContent{}).
		Select("content_types.name AS label, COUNT(*) AS count").
		Joins("LEFT JOIN content_types ON content_types.id = generated_content.content_type_id").
		Where("generated_content.user_id = ?", userID).
		Group("content_types.name").
		Order("count DESC, label ASC").
		Scan(&out).Error
	return out, err
}

// CountContentBy groups the user's non-empty values of column (tone or
// length_preference), largest group first.
func CountContentBy(ctx context.Context, db *gorm.DB, userID, column string) ([]Bucket, error) {
	switch column {
	case "tone", "length_preference":
	default:
		return nil, gorm.ErrInvalidField
	}
	var out []Bucket
	err := db.WithContext(ctx).
		Model(&domain.GeneratedContent{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("user_id = ? AND "+column+" <> ''", userID).
		Group(column).
		Order("count DESC, label ASC").
		Scan(&out).Error
	return out, err
}
