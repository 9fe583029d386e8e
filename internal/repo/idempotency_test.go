package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateGetDuplicateExpire(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := GetIdempotency(ctx, db, "u1", " ", "k", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank scope: want ErrNotFound, got %v", err)
	}

	rec, err := CreateIdempotency(ctx, db, "u1", "/api/v1/generate", "k1", "content-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.ExpiresAt.Sub(rec.CreatedAt) != time.Hour {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "/api/v1/generate", "k1", now)
	if err != nil || got.ContentID != "content-1" || got.Status != 201 {
		t.Fatalf("GetIdempotency = %+v, %v", got, err)
	}
	if _, err := GetIdempotency(ctx, db, "u2", "/api/v1/generate", "k1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user's key must not match, got %v", err)
	}

	if _, err := CreateIdempotency(ctx, db, "u1", "/api/v1/generate", "k1", "content-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	future := now.Add(2 * time.Hour)
	if _, err := GetIdempotency(ctx, db, "u1", "/api/v1/generate", "k1", future); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired key: want ErrNotFound, got %v", err)
	}
	n, err := PurgeExpiredIdempotency(ctx, db, future)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredIdempotency = %d, %v; want 1", n, err)
	}
}
