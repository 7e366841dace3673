// Package browse serves catalog list pages through the browse cache.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dropbinge/dropbinge/internal/cache"
	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/tmdb"
)

// Known catalog lists per media selector.
var Lists = map[string][]string{
	"movie":    {"popular", "upcoming", "out_now", "completed"},
	"tv":       {"popular", "on_the_air", "completed", "seasons"},
	"trending": {"all/day"},
}

// Service reads catalog browse pages, caching each page for the cache TTL
// under "<media>:<list>:<page>".
type Service struct {
	catalog *tmdb.Client
	cache   *cache.BrowseCache
	logger  *slog.Logger
}

// NewService creates a browse service.
func NewService(catalog *tmdb.Client, browseCache *cache.BrowseCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, cache: browseCache, logger: logger}
}

// CacheKey derives the logical cache key for one list page.
func CacheKey(media, list string, page int) string {
	return fmt.Sprintf("%s:%s:%d", media, list, page)
}

// Page returns one page of the requested list, served from cache when a
// fresh entry exists.
func (s *Service) Page(ctx context.Context, media, list string, page int) (*domain.BrowsePage, error) {
	key := CacheKey(media, list, page)

	if entry, ok := s.cache.Get(key); ok {
		s.logger.Debug("browse cache hit", "key", key)
		return &domain.BrowsePage{
			Items:      entry.Items,
			Page:       entry.Page,
			TotalPages: entry.TotalPages,
		}, nil
	}

	result, err := s.fetch(ctx, media, list, page)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, *result)
	return result, nil
}

// Invalidate drops all cached pages for one media selector, or everything
// when media is empty.
func (s *Service) Invalidate(media string) {
	if media == "" {
		s.cache.Clear("")
		return
	}
	s.cache.Clear(media + ":")
}

func (s *Service) fetch(ctx context.Context, media, list string, page int) (*domain.BrowsePage, error) {
	// The tv seasons endpoint multiplexes its sub-lists via a query
	// parameter rather than the path.
	if media == "tv" && list == "seasons" {
		extra := url.Values{}
		extra.Set("list", "on-the-air")
		return s.catalog.List(ctx, media, list, page, extra)
	}
	return s.catalog.List(ctx, media, list, page, nil)
}
