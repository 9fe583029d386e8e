// Package services – ContentService
//
// ContentService serves the content history: filtered, searched and sorted
// listings of a user's generated content plus the favorite toggle.
package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/repo"
	"github.com/tbourn/go-content-studio/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Content list bounds.
const (
	DefaultContentLimit = 100
	MaxContentLimit     = 1000
)

// ContentSort orders a history listing.
type ContentSort string

const (
	SortRecent    ContentSort = "recent"
	SortOldest    ContentSort = "oldest"
	SortFavorites ContentSort = "favorites"
	SortRelevance ContentSort = "relevance"
)

// ParseContentSort accepts the sort names above; empty means SortRecent.
func ParseContentSort(s string) (ContentSort, bool) {
	switch v := ContentSort(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SortRecent, true
	case SortRecent, SortOldest, SortFavorites, SortRelevance:
		return v, true
	}
	return "", false
}

// ContentFilter narrows a history listing. The zero value lists the latest
// DefaultContentLimit items, newest first.
type ContentFilter struct {
	ContentType string // content type name, case-insensitive; empty for all
	Query       string // search text; empty for no search
	Sort        ContentSort
	Limit       int
}

// ContentItem is a history entry as listed.
type ContentItem struct {
	domain.GeneratedContent
	WordCount int     `json:"word_count"`
	Score     float64 `json:"score,omitempty"`
}

// ContentService reads and updates generated content.
type ContentService struct {
	DB *gorm.DB
}

// NewContentService returns a ContentService over db.
func NewContentService(db *gorm.DB) *ContentService { return &ContentService{DB: db} }

// List returns the user's content matching f. Filtering and search apply to
// the latest Limit items.
func (s *ContentService) List(ctx context.Context, userID string, f ContentFilter) ([]ContentItem, error) {
	ctx, span := otel.Tracer("services/ContentService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("sort", string(f.Sort)),
			attribute.Int("limit", f.Limit),
		),
	)
	defer span.End()

	sortBy := f.Sort
	if sortBy == "" {
		sortBy = SortRecent
	}
	if _, ok := ParseContentSort(string(sortBy)); !ok {
		return nil, newError(ErrValidation, "unknown sort %q", f.Sort)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultContentLimit
	}
	if limit > MaxContentLimit {
		limit = MaxContentLimit
	}

	rows, err := repo.ListContent(ctx, s.DB, userID, limit)
	if err != nil {
		return nil, err
	}

	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		kept := rows[:0]
		for _, r := range rows {
			if strings.EqualFold(r.ContentTypeName, ct) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	items := make([]ContentItem, 0, len(rows))
	if q := strings.TrimSpace(f.Query); q != "" {
		docs := make([]search.Doc, len(rows))
		byID := make(map[string]domain.GeneratedContent, len(rows))
		for i, r := range rows {
			docs[i] = search.Doc{ID: r.ID, Fields: []string{r.Prompt, r.GeneratedText}}
			byID[r.ID] = r
		}
		// Match ranks by score; recent/oldest/favorites reorder below.
		for _, res := range search.NewIndex(docs).Match(q) {
			items = append(items, newContentItem(byID[res.ID], res.Score))
		}
		if sortBy != SortRelevance {
			sort.SliceStable(items, func(a, b int) bool {
				return items[a].CreatedAt.After(items[b].CreatedAt)
			})
		}
	} else {
		for _, r := range rows {
			items = append(items, newContentItem(r, 0))
		}
	}

	switch sortBy {
	case SortOldest:
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].CreatedAt.Before(items[b].CreatedAt)
		})
	case SortFavorites:
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].IsFavorite && !items[b].IsFavorite
		})
	}
	span.SetAttributes(attribute.Int("results", len(items)))
	return items, nil
}

func newContentItem(c domain.GeneratedContent, score float64) ContentItem {
	return ContentItem{GeneratedContent: c, WordCount: search.WordCount(c.GeneratedText), Score: score}
}

// Get returns one item owned by userID.
func (s *ContentService) Get(ctx context.Context, userID, id string) (*ContentItem, error) {
	c, err := repo.GetContent(ctx, s.DB, id, userID)
	if err != nil {
		return nil, notFound(err, "content")
	}
	item := newContentItem(*c, 0)
	return &item, nil
}

// ToggleFavorite flips the favorite flag of an item and returns the new value.
func (s *ContentService) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	ctx, span := otel.Tracer("services/ContentService").Start(ctx, "ToggleFavorite",
		trace.WithAttributes(attribute.String("content.id", id)),
	)
	defer span.End()

	fav, err := repo.ToggleFavorite(ctx, s.DB, id, userID)
	if err != nil {
		return false, notFound(err, "content")
	}
	return fav, nil
}

// Delete is not available yet; history entries are kept.
func (s *ContentService) Delete(ctx context.Context, userID, id string) error {
	return newError(ErrNotImplemented, "deleting content is not supported yet")
}
