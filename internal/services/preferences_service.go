// Package services – PreferencesService
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PreferencesService reads and updates per-user generation defaults.
type PreferencesService struct {
	DB *gorm.DB
}

// NewPreferencesService returns a PreferencesService over db.
func NewPreferencesService(db *gorm.DB) *PreferencesService { return &PreferencesService{DB: db} }

// PreferencesInput is a partial update as received from a client. Nil
// fields are left unchanged; set fields must name a known value.
type PreferencesInput struct {
	DefaultTone   *string
	DefaultLength *string
	Theme         *string
}

// Get returns the user's preferences, or the defaults when none are stored.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	p, err := repo.GetPreferences(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		d := domain.DefaultPreferences(userID)
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update validates in and merges it into the stored preferences.
func (s *PreferencesService) Update(ctx context.Context, userID string, in PreferencesInput) (*domain.UserPreferences, error) {
	ctx, span := otel.Tracer("services/PreferencesService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	upd, err := parsePreferences(in)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return s.Get(ctx, userID)
	}
	return repo.UpsertPreferences(ctx, s.DB, userID, upd)
}

func parsePreferences(in PreferencesInput) (domain.PreferencesUpdate, error) {
	var upd domain.PreferencesUpdate
	if in.DefaultTone != nil {
		t, ok := domain.ParseTone(*in.DefaultTone)
		if !ok || t == domain.ToneUnspecified {
			return upd, newError(ErrValidation, "unknown tone %q", *in.DefaultTone)
		}
		upd.DefaultTone = &t
	}
	if in.DefaultLength != nil {
		l, ok := domain.ParseLength(*in.DefaultLength)
		if !ok || l == domain.LengthUnspecified {
			return upd, newError(ErrValidation, "unknown length %q", *in.DefaultLength)
		}
		upd.DefaultLength = &l
	}
	if in.Theme != nil {
		th, ok := domain.ParseTheme(*in.Theme)
		if !ok {
			return upd, newError(ErrValidation, "unknown theme %q", *in.Theme)
		}
		upd.Theme = &th
	}
	return upd, nil
}
