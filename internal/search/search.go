// Package search queries the catalog's multi search and keeps a short
// history of selections. It also provides local fuzzy filtering used by
// the follow list view.
package search

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/tmdb"
)

// Service performs catalog searches and records history.
type Service struct {
	catalog *tmdb.Client
	history *History
	logger  *slog.Logger
}

// NewService creates a search service.
func NewService(catalog *tmdb.Client, history *History, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, history: history, logger: logger}
}

// Search queries the catalog.
func (s *Service) Search(ctx context.Context, query string) ([]domain.TitleSummary, error) {
	if query == "" {
		return nil, nil
	}
	s.logger.Debug("searching catalog", "query", query)
	return s.catalog.Search(ctx, query)
}

// Remember records a picked result in the search history.
func (s *Service) Remember(summary domain.TitleSummary) {
	mediaType := domain.MediaType(summary.MediaType)
	if mediaType != domain.MediaTypeMovie && mediaType != domain.MediaTypeTV {
		return
	}
	s.history.Add(HistoryItem{
		Key:        domain.FollowKey(mediaType, summary.ID, summary.SeasonNumber),
		MediaType:  mediaType,
		TMDBID:     summary.ID,
		Title:      summary.DisplayTitle(),
		PosterPath: summary.PosterPath,
		Date:       summary.Date,
		AddedAt:    time.Now().UnixMilli(),
	})
}

// Recent returns the remembered searches.
func (s *Service) Recent() []HistoryItem {
	return s.history.Recent()
}

// FilterFollows keeps the follows whose title fuzzily matches query,
// ranked best match first. An empty query returns items unchanged.
func FilterFollows(query string, items []domain.FollowItem) []domain.FollowItem {
	if query == "" {
		return items
	}
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	sort.Sort(ranks)

	matched := make([]domain.FollowItem, 0, len(ranks))
	for _, rank := range ranks {
		matched = append(matched, items[rank.OriginalIndex])
	}
	return matched
}
