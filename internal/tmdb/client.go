// Package tmdb talks to the external metadata catalog through the tracking
// service's read-only proxy endpoints. The catalog is treated as unreliable;
// callers are expected to degrade on any error.
package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dropbinge/dropbinge/internal/api"
	"github.com/dropbinge/dropbinge/internal/domain"
)

// Client implements domain.MetadataRepository.
type Client struct {
	api    *api.Client
	logger *slog.Logger
}

// NewClient creates a new catalog client on top of the shared API client,
// so detail and list GETs participate in request coalescing.
func NewClient(apiClient *api.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: apiClient, logger: logger}
}

// MovieDetail returns catalog detail for a movie.
func (c *Client) MovieDetail(ctx context.Context, tmdbID int) (*domain.MovieDetail, error) {
	var dto movieDetails
	if err := c.api.Get(ctx, fmt.Sprintf("/api/tmdb/movie/%d", tmdbID), &dto); err != nil {
		return nil, err
	}
	return &domain.MovieDetail{
		Title:       dto.Title,
		PosterPath:  dto.PosterPath,
		ReleaseDate: emptyToNil(dto.ReleaseDate),
		Status:      dto.Status,
	}, nil
}

// SeriesDetail returns catalog detail for a full TV run.
func (c *Client) SeriesDetail(ctx context.Context, tmdbID int) (*domain.SeriesDetail, error) {
	var dto tvDetails
	if err := c.api.Get(ctx, fmt.Sprintf("/api/tmdb/tv/%d", tmdbID), &dto); err != nil {
		return nil, err
	}
	return &domain.SeriesDetail{
		Name:         dto.Name,
		PosterPath:   dto.PosterPath,
		FirstAirDate: emptyToNil(dto.FirstAirDate),
		Status:       dto.Status,
	}, nil
}

// SeasonDetail returns catalog detail for one season.
func (c *Client) SeasonDetail(ctx context.Context, tmdbID, seasonNumber int) (*domain.SeasonDetail, error) {
	var dto seasonDetails
	path := fmt.Sprintf("/api/tmdb/tv/%d/season/%d", tmdbID, seasonNumber)
	if err := c.api.Get(ctx, path, &dto); err != nil {
		return nil, err
	}
	detail := &domain.SeasonDetail{
		Name:       dto.Name,
		PosterPath: dto.PosterPath,
		AirDate:    emptyToNil(dto.AirDate),
	}
	for _, ep := range dto.Episodes {
		detail.Episodes = append(detail.Episodes, domain.Episode{AirDate: ep.AirDate})
	}
	return detail, nil
}

// List fetches one page of a catalog browse list, e.g. ("movie", "popular", 1).
// Extra query values (such as the tv seasons list selector) may be nil.
func (c *Client) List(ctx context.Context, media, list string, page int, extra url.Values) (*domain.BrowsePage, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	for k, vs := range extra {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	path := fmt.Sprintf("/api/tmdb/list/%s/%s?%s", media, list, query.Encode())

	var dto listResponse
	if err := c.api.Get(ctx, path, &dto); err != nil {
		return nil, err
	}

	result := &domain.BrowsePage{
		Page:       dto.Page,
		TotalPages: dto.TotalPages,
	}
	for _, entry := range dto.Results {
		result.Items = append(result.Items, mapListEntry(entry))
	}
	return result, nil
}

// Search queries the catalog's multi search.
func (c *Client) Search(ctx context.Context, query string) ([]domain.TitleSummary, error) {
	path := "/api/tmdb/search?q=" + url.QueryEscape(query)
	var dto listResponse
	if err := c.api.Get(ctx, path, &dto); err != nil {
		return nil, err
	}
	items := make([]domain.TitleSummary, 0, len(dto.Results))
	for _, entry := range dto.Results {
		items = append(items, mapListEntry(entry))
	}
	return items, nil
}

func mapListEntry(entry listEntry) domain.TitleSummary {
	date := entry.Date
	if date == nil {
		if entry.ReleaseDate != nil {
			date = entry.ReleaseDate
		} else {
			date = entry.FirstAirDate
		}
	}
	return domain.TitleSummary{
		ID:           entry.ID,
		MediaType:    entry.MediaType,
		Title:        entry.Title,
		Name:         entry.Name,
		PosterPath:   entry.PosterPath,
		Date:         date,
		SeasonNumber: entry.SeasonNumber,
		IsCompleted:  entry.IsCompleted,
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
