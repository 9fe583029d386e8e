package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// GetPreferences returns the stored preferences or ErrNotFound.
func GetPreferences(ctx context.Context, db *gorm.DB, userID string) (*domain.UserPreferences, error) {
	var p domain.UserPreferences
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPreferences inserts or updates the user's preferences row. Only the
// non-nil fields of upd are applied; a new row starts from the defaults.
// Read and write happen in one transaction so concurrent partial updates
// cannot lose each other's fields.
func UpsertPreferences(ctx context.Context, db *gorm.DB, userID string, upd domain.PreferencesUpdate) (*domain.UserPreferences, error) {
	var out domain.UserPreferences
	err := Execute(ctx, db, func(tx *gorm.DB) error {
		var existing domain.UserPreferences
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = domain.MergePreferences(domain.DefaultPreferences(userID), upd)
			out.UpdatedAt = time.Now().UTC()
			return tx.Omit("User").Create(&out).Error
		case err != nil:
			return err
		}
		out = domain.MergePreferences(existing, upd)
		out.UpdatedAt = time.Now().UTC()
		return tx.Model(&domain.UserPreferences{}).
			Where("user_id = ?", userID).
			Select("default_tone", "default_length", "theme", "updated_at").
			Updates(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
