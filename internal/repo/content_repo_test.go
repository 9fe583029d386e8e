package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-content-studio/internal/domain"
)

func saveContent(t *testing.T, userID string, ct *domain.ContentType, prompt string, tone domain.Tone) *domain.GeneratedContent {
	t.Helper()
	c := &domain.GeneratedContent{
		UserID:           userID,
		ContentTypeID:    ct.ID,
		Prompt:           prompt,
		GeneratedText:    "text for " + prompt,
		Tone:             tone,
		LengthPreference: domain.LengthShort,
	}
	return c
}

func TestContent_SaveListToggle(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	u := mustUser(t, db, "c@x.io")
	other := mustUser(t, db, "d@x.io")
	ad := mustType(t, db, domain.KindAdContent)

	older := saveContent(t, u.ID, ad, "older", domain.TonePersuasive)
	if err := SaveContent(ctx, db, older); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	newer := saveContent(t, u.ID, ad, "newer", domain.ToneCasual)
	if err := SaveContent(ctx, db, newer); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	db.Model(&domain.GeneratedContent{}).Where("id = ?", older.ID).Update("created_at", time.Now().UTC().Add(-time.Hour))

	list, err := ListContent(ctx, db, u.ID, 0)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[0].ContentTypeName != "Ad Content" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].IsFavorite {
		t.Fatalf("new content must not be favorite")
	}

	fav, err := ToggleFavorite(ctx, db, newer.ID, u.ID)
	if err != nil || !fav {
		t.Fatalf("first toggle = %v, %v; want true", fav, err)
	}
	fav, err = ToggleFavorite(ctx, db, newer.ID, u.ID)
	if err != nil || fav {
		t.Fatalf("second toggle = %v, %v; want false", fav, err)
	}
	if _, err := ToggleFavorite(ctx, db, newer.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle by non-owner should be not found, got %v", err)
	}

	if _, err := GetContent(ctx, db, older.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetContent by non-owner should be not found, got %v", err)
	}
}

func TestContent_RequiresKnownType(t *testing.T) {
	db := newTestDB(t, true)
	u := mustUser(t, db, "e@x.io")
	bad := &domain.GeneratedContent{UserID: u.ID, ContentTypeID: 9999, Prompt: "p", GeneratedText: "t"}
	if err := SaveContent(context.Background(), db, bad); err == nil {
		t.Fatalf("unknown content type should violate the FK")
	}
}
