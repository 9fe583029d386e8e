package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-content-studio/internal/domain"
)

func TestSessionsStats(t *testing.T) {
	ctx := context.Background()

	if _, _, err := SessionsStats(ctx, newTestDB(t, false), "u1"); err == nil {
		t.Fatalf("expected error without schema")
	}

	db := newTestDB(t, true)
	u := mustUser(t, db, "st@x.io")
	if n, latest, err := SessionsStats(ctx, db, u.ID); err != nil || n != 0 || latest != nil {
		t.Fatalf("empty stats = %d, %v, %v", n, latest, err)
	}

	a, _ := CreateSession(ctx, db, u.ID, "a", nil)
	b, _ := CreateSession(ctx, db, u.ID, "b", nil)
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	db.Model(&domain.ChatSession{}).Where("id = ?", a.ID).Update("updated_at", t1)
	db.Model(&domain.ChatSession{}).Where("id = ?", b.ID).Update("updated_at", t2)

	n, latest, err := SessionsStats(ctx, db, u.ID)
	if err != nil || n != 2 || latest == nil || !latest.Equal(t2) {
		t.Fatalf("stats = %d, %v, %v; want 2, %v", n, latest, err, t2)
	}
}

func TestContentStatsAndGroupedCounts(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	u := mustUser(t, db, "g@x.io")
	ad := mustType(t, db, domain.KindAdContent)
	blog := mustType(t, db, domain.KindBlogPost)

	for _, c := range []*domain.GeneratedContent{
		{UserID: u.ID, ContentTypeID: blog.ID, Prompt: "1", GeneratedText: "x", Tone: domain.ToneInformative, LengthPreference: domain.LengthLong},
		{UserID: u.ID, ContentTypeID: blog.ID, Prompt: "2", GeneratedText: "x", Tone: domain.ToneInformative, LengthPreference: domain.LengthShort},
		{UserID: u.ID, ContentTypeID: ad.ID, Prompt: "3", GeneratedText: "x", Tone: domain.TonePersuasive, LengthPreference: domain.LengthShort},
		{UserID: u.ID, ContentTypeID: ad.ID, Prompt: "4", GeneratedText: "x"},
	} {
		if err := SaveContent(ctx, db, c); err != nil {
			t.Fatalf("SaveContent: %v", err)
		}
	}
	list, _ := ListContent(ctx, db, u.ID, 1)
	if _, err := ToggleFavorite(ctx, db, list[0].ID, u.ID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	n, favs, latest, err := ContentStats(ctx, db, u.ID)
	if err != nil || n != 4 || favs != 1 || latest == nil {
		t.Fatalf("ContentStats = %d, %d, %v, %v", n, favs, latest, err)
	}

	byType, err := CountContentByType(ctx, db, u.ID)
	if err != nil || len(byType) != 2 {
		t.Fatalf("CountContentByType = %+v, %v", byType, err)
	}
	// Equal counts fall back to label order.
	if byType[0].Label != "Ad Content" || byType[0].Count != 2 {
		t.Fatalf("unexpected first bucket: %+v", byType[0])
	}

	tones, err := CountContentBy(ctx, db, u.ID, "tone")
	if err != nil || len(tones) != 2 || tones[0].Label != "informative" || tones[0].Count != 2 {
		t.Fatalf("tones = %+v, %v", tones, err)
	}
	lengths, _ := CountContentBy(ctx, db, u.ID, "length_preference")
	if len(lengths) != 2 || lengths[0].Label != "short" {
		t.Fatalf("lengths = %+v", lengths)
	}
	if _, err := CountContentBy(ctx, db, u.ID, "prompt; DROP TABLE users"); err == nil {
		t.Fatalf("unknown column must be rejected")
	}
}
