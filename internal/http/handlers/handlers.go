// Package handlers implements the HTTP endpoints of the content studio.
//
// Handlers are transport-thin: they bind and normalize input, take the
// caller's identity from the auth middleware, delegate to the application
// services and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/http/middleware"
	"github.com/tbourn/go-content-studio/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService covers sign-up, sign-in and the profile of the caller.
type AccountService interface {
	SignUp(ctx context.Context, email, password string, displayName *string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
	IssueSession(u *domain.User) (*services.Session, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, displayName, pictureURL *string) (*domain.User, error)
	ChangePasswordConfirmed(ctx context.Context, userID, oldPassword, newPassword, confirm string) error
}

// GenerationService produces content through the model.
type GenerationService interface {
	Generate(ctx context.Context, sc domain.SessionContext, req services.GenerateRequest) (*services.GenerateResult, error)
	Stream(ctx context.Context, sc domain.SessionContext, req services.GenerateRequest, hooks services.StreamHooks) (*services.GenerateResult, error)
	CheckConnection(ctx context.Context) bool
	Models() []string
	ContentTypes(ctx context.Context) ([]domain.ContentType, error)
}

// IdempotencyStore replays keyed generations.
type IdempotencyStore interface {
	Replay(ctx context.Context, userID, scope, key string) (*services.GenerateResult, bool, error)
	Remember(ctx context.Context, userID, scope, key string, status int, res *services.GenerateResult) error
}

// SessionService lists and opens chat sessions.
type SessionService interface {
	List(ctx context.Context, userID string, limit int) ([]domain.ChatSession, error)
	Get(ctx context.Context, userID, id string) (*services.SessionDetail, error)
	Rename(ctx context.Context, userID, id, title string) error
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// ContentService serves the content history.
type ContentService interface {
	List(ctx context.Context, userID string, f services.ContentFilter) ([]services.ContentItem, error)
	Get(ctx context.Context, userID, id string) (*services.ContentItem, error)
	ToggleFavorite(ctx context.Context, userID, id string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

// PreferencesService reads and updates the caller's defaults.
type PreferencesService interface {
	Get(ctx context.Context, userID string) (*domain.UserPreferences, error)
	Update(ctx context.Context, userID string, in services.PreferencesInput) (*domain.UserPreferences, error)
}

// StatsService computes profile statistics.
type StatsService interface {
	Profile(ctx context.Context, userID string) (*services.ProfileStats, error)
}

//
// Handler wiring
//

// Services are the dependencies of Handlers. Idempotency may be nil, in
// which case Idempotency-Key headers are accepted but not honored.
type Services struct {
	Accounts    AccountService
	Generation  GenerationService
	Idempotency IdempotencyStore
	Sessions    SessionService
	Contents    ContentService
	Preferences PreferencesService
	Stats       StatsService
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	accounts AccountService
	gen      GenerationService
	idem     IdempotencyStore
	sessions SessionService
	contents ContentService
	prefs    PreferencesService
	stats    StatsService
}

// New returns Handlers bound to s.
func New(s Services) *Handlers {
	return &Handlers{
		accounts: s.Accounts,
		gen:      s.Generation,
		idem:     s.Idempotency,
		sessions: s.Sessions,
		contents: s.Contents,
		prefs:    s.Preferences,
		stats:    s.Stats,
	}
}

// userID is the authenticated caller; "" only on routes mounted without
// the auth middleware.
func userID(c *gin.Context) string { return middleware.UserID(c) }
