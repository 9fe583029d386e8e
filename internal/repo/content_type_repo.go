package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// ListContentTypes returns all content types ordered by name.
func ListContentTypes(ctx context.Context, db *gorm.DB) ([]domain.ContentType, error) {
	var out []domain.ContentType
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

// GetContentTypeByName matches name case-insensitively.
func GetContentTypeByName(ctx context.Context, db *gorm.DB, name string) (*domain.ContentType, error) {
	var ct domain.ContentType
	err := db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
