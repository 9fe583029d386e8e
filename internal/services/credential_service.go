// Package services – CredentialService
//
// CredentialService owns account creation, sign-in and password changes.
// It is stateless per call: identity travels with each request (a session
// token issued here), never in shared mutable state.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/auth"
	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CredentialService validates and stores account credentials.
type CredentialService struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

// NewCredentialService returns a service persisting through db. tokens may
// be nil when no session tokens are needed (tests, tooling).
func NewCredentialService(db *gorm.DB, tokens *auth.TokenManager) *CredentialService {
	return &CredentialService{DB: db, Tokens: tokens}
}

// Session is an issued session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignUp registers a new account. The email is stored trimmed and
// lower-cased. A second sign-up with the same address fails with
// ErrConflict and leaves a single row.
func (s *CredentialService) SignUp(ctx context.Context, email, password string, displayName *string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/CredentialService").Start(ctx, "SignUp")
	defer span.End()

	email = auth.NormalizeEmail(email)
	if !auth.ValidateEmail(email) {
		return nil, newError(ErrValidation, "invalid email format")
	}
	if len(password) < auth.MinPasswordLen {
		return nil, newError(ErrValidation, "password must be at least %d characters", auth.MinPasswordLen)
	}
	displayName = trimOptional(displayName)

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, newError(ErrConflict, "email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	digest, salt, err := auth.HashPassword(password, "")
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateUser(ctx, s.DB, email, digest, salt, displayName)
	if errors.Is(err, repo.ErrDuplicate) {
		// lost a race with a concurrent sign-up
		return nil, newError(ErrConflict, "email already registered")
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return u, nil
}

// SignIn checks an email/password pair. An unknown email and a wrong
// password produce the same ErrInvalidCredentials.
func (s *CredentialService) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/CredentialService").Start(ctx, "SignIn")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, auth.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(password, u.PasswordHash, u.Salt) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueSession signs a session token for u.
func (s *CredentialService) IssueSession(u *domain.User) (*Session, error) {
	if s.Tokens == nil {
		return nil, errors.New("credential service: no token manager configured")
	}
	tok, exp, err := s.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp}, nil
}

// ChangePassword re-hashes the password of userID with a fresh salt after
// verifying the current one.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	ctx, span := otel.Tracer("services/CredentialService").Start(ctx, "ChangePassword",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return notFound(err, "user")
	}
	if !auth.VerifyPassword(oldPassword, u.PasswordHash, u.Salt) {
		return newError(ErrAuth, "current password is incorrect")
	}
	if len(newPassword) < auth.MinPasswordLen {
		return newError(ErrValidation, "password must be at least %d characters", auth.MinPasswordLen)
	}
	digest, salt, err := auth.HashPassword(newPassword, "")
	if err != nil {
		return err
	}
	return notFound(repo.UpdatePassword(ctx, s.DB, userID, digest, salt), "user")
}

// ChangePasswordConfirmed is ChangePassword behind the profile form checks:
// every field filled in and the new password typed twice identically.
func (s *CredentialService) ChangePasswordConfirmed(ctx context.Context, userID, oldPassword, newPassword, confirm string) error {
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return newError(ErrValidation, "please fill in all fields")
	}
	if newPassword != confirm {
		return newError(ErrValidation, "new passwords do not match")
	}
	return s.ChangePassword(ctx, userID, oldPassword, newPassword)
}

// GetUser returns the account of userID.
func (s *CredentialService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateProfile sets the supplied profile fields and returns the account.
// A field given as an empty string is cleared.
func (s *CredentialService) UpdateProfile(ctx context.Context, userID string, displayName, pictureURL *string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/CredentialService").Start(ctx, "UpdateProfile",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := repo.UpdateUserProfile(ctx, s.DB, userID, trimOptional(displayName), trimOptional(pictureURL)); err != nil {
		return nil, notFound(err, "user")
	}
	return s.GetUser(ctx, userID)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
