// Package services – StatsService
//
// StatsService computes the statistics shown on the profile page.
package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/repo"
	"github.com/tbourn/go-content-studio/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	statsWindow    = 1000 // items read for word totals
	activityItems  = 30   // latest items grouped into recent activity
	activityDays   = 7
	activityLayout = "2006-01-02"
)

// TypeCount is the number of items of one content type.
type TypeCount struct {
	ContentType string `json:"content_type"`
	Count       int64  `json:"count"`
}

// DayCount is the number of items created on one UTC day.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ProfileStats summarizes a user's activity.
type ProfileStats struct {
	TotalContent   int64       `json:"total_content"`
	Favorites      int64       `json:"favorites"`
	Sessions       int64       `json:"sessions"`
	TotalWords     int         `json:"total_words"`
	ByType         []TypeCount `json:"by_type"`
	RecentActivity []DayCount  `json:"recent_activity"`
	MostUsedTone   string      `json:"most_used_tone,omitempty"`
	MostUsedLength string      `json:"most_used_length,omitempty"`
	LastCreatedAt  *time.Time  `json:"last_created_at,omitempty"`
}

// StatsService aggregates content and session counts.
type StatsService struct {
	DB *gorm.DB
	// Locale drives title casing of tone and length labels.
	Locale language.Tag
}

// NewStatsService returns a StatsService with English labels.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db, Locale: language.English}
}

// Profile computes the statistics of userID.
func (s *StatsService) Profile(ctx context.Context, userID string) (*ProfileStats, error) {
	ctx, span := otel.Tracer("services/StatsService").Start(ctx, "Profile",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	out := &ProfileStats{ByType: []TypeCount{}, RecentActivity: []DayCount{}}

	var err error
	if out.TotalContent, out.Favorites, out.LastCreatedAt, err = repo.ContentStats(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Sessions, _, err = repo.SessionsStats(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.TotalContent == 0 {
		return out, nil
	}

	byType, err := repo.CountContentByType(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	for _, b := range byType {
		out.ByType = append(out.ByType, TypeCount{ContentType: b.Label, Count: b.Count})
	}

	title := cases.Title(s.locale())
	if tones, err := repo.CountContentBy(ctx, s.DB, userID, "tone"); err != nil {
		return nil, err
	} else if len(tones) > 0 {
		out.MostUsedTone = title.String(tones[0].Label)
	}
	if lengths, err := repo.CountContentBy(ctx, s.DB, userID, "length_preference"); err != nil {
		return nil, err
	} else if len(lengths) > 0 {
		out.MostUsedLength = title.String(lengths[0].Label)
	}

	recent, err := repo.ListContent(ctx, s.DB, userID, statsWindow)
	if err != nil {
		return nil, err
	}
	perDay := map[string]int{}
	for i, c := range recent {
		out.TotalWords += search.WordCount(c.GeneratedText)
		if i < activityItems {
			perDay[c.CreatedAt.UTC().Format(activityLayout)]++
		}
	}
	for day, n := range perDay {
		out.RecentActivity = append(out.RecentActivity, DayCount{Date: day, Count: n})
	}
	sort.Slice(out.RecentActivity, func(a, b int) bool {
		return out.RecentActivity[a].Date > out.RecentActivity[b].Date
	})
	if len(out.RecentActivity) > activityDays {
		out.RecentActivity = out.RecentActivity[:activityDays]
	}
	return out, nil
}

func (s *StatsService) locale() language.Tag {
	if s.Locale == language.Und {
		return language.English
	}
	return s.Locale
}
