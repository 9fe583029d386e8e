package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/repo"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// seedContent stores one item created hoursAgo hours before baseTime.
func seedContent(t *testing.T, db *gorm.DB, userID string, kind domain.ContentKind, prompt, text string, hoursAgo int) *domain.GeneratedContent {
	t.Helper()
	ctx := context.Background()
	ct, err := repo.GetContentTypeByName(ctx, db, string(kind))
	if err != nil {
		t.Fatalf("content type %s: %v", kind, err)
	}
	c := &domain.GeneratedContent{
		UserID:           userID,
		ContentTypeID:    ct.ID,
		Prompt:           prompt,
		GeneratedText:    text,
		Tone:             domain.ToneProfessional,
		LengthPreference: domain.LengthMedium,
	}
	if err := repo.SaveContent(ctx, db, c); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	at := baseTime.Add(-time.Duration(hoursAgo) * time.Hour)
	if err := db.Model(&domain.GeneratedContent{}).Where("id = ?", c.ID).Update("created_at", at).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
	c.CreatedAt = at
	return c
}

func contentIDs(items []ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestContentList_SortAndFilter(t *testing.T) {
	db := newTestDB(t)
	u := mustUser(t, db, "list@example.com")
	svc := NewContentService(db)
	ctx := context.Background()

	oldBlog := seedContent(t, db, u.ID, domain.KindBlogPost, "AI trends", "Five trends in AI today.", 48)
	midAd := seedContent(t, db, u.ID, domain.KindAdContent, "Eco bottles", "Go green now!", 24)
	newBlog := seedContent(t, db, u.ID, domain.KindBlogPost, "Remote work", "Working from anywhere works.", 1)
	other := mustUser(t, db, "someone@example.com")
	seedContent(t, db, other.ID, domain.KindBlogPost, "AI trends", "not yours", 0)

	items, err := svc.List(ctx, u.ID, ContentFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !equalIDs(contentIDs(items), newBlog.ID, midAd.ID, oldBlog.ID) {
		t.Fatalf("recent order = %v", contentIDs(items))
	}
	if items[0].WordCount != 4 || items[0].ContentTypeName != string(domain.KindBlogPost) {
		t.Fatalf("item = %+v", items[0])
	}

	items, _ = svc.List(ctx, u.ID, ContentFilter{Sort: SortOldest})
	if !equalIDs(contentIDs(items), oldBlog.ID, midAd.ID, newBlog.ID) {
		t.Fatalf("oldest order = %v", contentIDs(items))
	}

	items, _ = svc.List(ctx, u.ID, ContentFilter{ContentType: "blog post"})
	if !equalIDs(contentIDs(items), newBlog.ID, oldBlog.ID) {
		t.Fatalf("type filter = %v", contentIDs(items))
	}

	if _, err := repo.ToggleFavorite(ctx, db, oldBlog.ID, u.ID); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	items, _ = svc.List(ctx, u.ID, ContentFilter{Sort: SortFavorites})
	if !equalIDs(contentIDs(items), oldBlog.ID, newBlog.ID, midAd.ID) {
		t.Fatalf("favorites order = %v", contentIDs(items))
	}

	items, _ = svc.List(ctx, u.ID, ContentFilter{Limit: 2})
	if len(items) != 2 {
		t.Fatalf("limit ignored: %d", len(items))
	}

	if _, err := svc.List(ctx, u.ID, ContentFilter{Sort: "random"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown sort = %v", err)
	}
}

func TestContentList_Search(t *testing.T) {
	db := newTestDB(t)
	u := mustUser(t, db, "search@example.com")
	svc := NewContentService(db)
	ctx := context.Background()

	a := seedContent(t, db, u.ID, domain.KindBlogPost, "AI trends", "Machine learning keeps growing.", 10)
	b := seedContent(t, db, u.ID, domain.KindLinkedInPost, "Team update", "Our AI TRENDS report is out.", 5)
	seedContent(t, db, u.ID, domain.KindAdContent, "Shoes", "Run faster.", 1)

	items, err := svc.List(ctx, u.ID, ContentFilter{Query: "ai trends"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// recent sort by default, even when searching
	if !equalIDs(contentIDs(items), b.ID, a.ID) {
		t.Fatalf("search = %v", contentIDs(items))
	}
	for _, it := range items {
		if it.Score <= 0 {
			t.Fatalf("search results carry a score: %+v", it)
		}
	}

	items, _ = svc.List(ctx, u.ID, ContentFilter{Query: "growing machine", Sort: SortRelevance})
	if !equalIDs(contentIDs(items), a.ID) {
		t.Fatalf("token search = %v", contentIDs(items))
	}

	items, _ = svc.List(ctx, u.ID, ContentFilter{Query: "nothing like this"})
	if len(items) != 0 {
		t.Fatalf("expected no matches, got %v", contentIDs(items))
	}
}

func TestContent_GetToggleDelete(t *testing.T) {
	db := newTestDB(t)
	u := mustUser(t, db, "fav@example.com")
	svc := NewContentService(db)
	ctx := context.Background()
	c := seedContent(t, db, u.ID, domain.KindBlogPost, "p", "one two", 0)

	got, err := svc.Get(ctx, u.ID, c.ID)
	if err != nil || got.WordCount != 2 {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(ctx, "intruder", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get foreign = %v", err)
	}

	fav, err := svc.ToggleFavorite(ctx, u.ID, c.ID)
	if err != nil || !fav {
		t.Fatalf("first toggle = %v, %v", fav, err)
	}
	fav, err = svc.ToggleFavorite(ctx, u.ID, c.ID)
	if err != nil || fav {
		t.Fatalf("second toggle = %v, %v", fav, err)
	}
	if _, err := svc.ToggleFavorite(ctx, "intruder", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle foreign = %v", err)
	}

	if err := svc.Delete(ctx, u.ID, c.ID); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Delete = %v", err)
	}
	if _, err := svc.Get(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("content should still exist: %v", err)
	}
}

func TestParseContentSort(t *testing.T) {
	for in, want := range map[string]ContentSort{"": SortRecent, " Oldest ": SortOldest, "relevance": SortRelevance} {
		if got, ok := ParseContentSort(in); !ok || got != want {
			t.Errorf("ParseContentSort(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseContentSort("shuffle"); ok {
		t.Errorf("unknown sort accepted")
	}
}
