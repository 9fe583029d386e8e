package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash, salt string, displayName *string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// GetUserByEmail looks an account up by its normalized email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches an account by id.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile sets only the supplied profile fields; nil keeps the
// stored value. ErrNotFound when the user does not exist.
func UpdateUserProfile(ctx context.Context, db *gorm.DB, id string, displayName, pictureURL *string) error {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if displayName != nil {
		changes["display_name"] = *displayName
	}
	if pictureURL != nil {
		changes["profile_picture_url"] = *pictureURL
	}
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored digest and salt.
func UpdatePassword(ctx context.Context, db *gorm.DB, id, passwordHash, salt string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": passwordHash,
		"salt":          salt,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
