// Package services – IdempotencyService
//
// IdempotencyService remembers which content a (user, scope, key) request
// produced so a retried generation returns the stored result instead of
// asking the model again.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService stores and replays keyed generation results.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyService returns a service keeping records for ttl
// (24h when ttl <= 0).
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Exists reports whether an unexpired record exists at now.
func (s *IdempotencyService) Exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Replay returns the stored result of a keyed request. ok is false when
// nothing is stored or the content has since disappeared.
func (s *IdempotencyService) Replay(ctx context.Context, userID, scope, key string) (res *GenerateResult, ok bool, err error) {
	ctx, span := otel.Tracer("services/IdempotencyService").Start(ctx, "Replay",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("scope", scope)),
	)
	defer span.End()

	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	content, err := repo.GetContent(ctx, s.DB, rec.ContentID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	res = &GenerateResult{Content: content}
	if content.SessionID != nil {
		if sess, err := repo.GetSession(ctx, s.DB, *content.SessionID, userID); err == nil {
			res.Session = sess
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, false, err
		}
	}
	span.SetAttributes(attribute.Bool("replayed", true))
	return res, true, nil
}

// Remember records that key produced res. A concurrent request that already
// stored the same key wins; that is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, userID, scope, key string, status int, res *GenerateResult) error {
	if key == "" || res == nil || res.Content == nil {
		return nil
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, res.Content.ID, status, s.TTL)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes records that expired before now and returns how many.
func (s *IdempotencyService) Purge(ctx context.Context, now time.Time) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, now)
}
