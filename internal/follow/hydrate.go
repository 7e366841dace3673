package follow

import (
	"context"
	"log/slog"
	"time"

	"github.com/dropbinge/dropbinge/internal/domain"
)

// placeholderNote marks an item whose hydration failed and can be retried.
const placeholderNote = "retry hydrate"

// Hydrator enriches a bare follow target with catalog metadata, producing
// a display-ready FollowItem. One detail fetch is selected per target:
// movie detail, series detail, or season detail.
type Hydrator struct {
	catalog domain.MetadataRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewHydrator creates a hydration service over the catalog.
func NewHydrator(catalog domain.MetadataRepository, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{catalog: catalog, logger: logger, now: time.Now}
}

// Hydrate fetches metadata and assembles a FollowItem. The error reports
// the catalog failure; callers that must not fail fall back to
// Placeholder.
func (h *Hydrator) Hydrate(ctx context.Context, target domain.FollowTarget, roles domain.Roles) (domain.FollowItem, error) {
	now := h.now()
	today := todayISO(now)

	item := domain.FollowItem{
		Key:          target.Key(),
		MediaType:    target.MediaType,
		TMDBID:       target.TMDBID,
		AddedAt:      now.UnixMilli(),
		SeasonNumber: target.SeasonNumber,
		TargetType:   target.TargetType(),
		DropEnabled:  roles.Drop,
		BingeEnabled: roles.Binge,
	}

	switch {
	case target.MediaType == domain.MediaTypeMovie:
		detail, err := h.catalog.MovieDetail(ctx, target.TMDBID)
		if err != nil {
			return domain.FollowItem{}, err
		}
		item.Title = detail.Title
		item.PosterPath = detail.PosterPath
		item.Meta = domain.Meta{Date: detail.ReleaseDate, TBD: detail.ReleaseDate == nil}
		item.IsCompleted = movieReleased(detail.Status, detail.ReleaseDate, today)

	case target.SeasonNumber != nil:
		detail, err := h.catalog.SeasonDetail(ctx, target.TMDBID, *target.SeasonNumber)
		if err != nil {
			return domain.FollowItem{}, err
		}
		item.Title = detail.Name
		item.PosterPath = detail.PosterPath
		item.Meta = domain.Meta{Date: detail.AirDate, TBD: detail.AirDate == nil}
		item.IsCompleted = seasonCompleted(detail.Episodes, today)

	default:
		detail, err := h.catalog.SeriesDetail(ctx, target.TMDBID)
		if err != nil {
			return domain.FollowItem{}, err
		}
		item.Title = detail.Name
		item.PosterPath = detail.PosterPath
		item.Meta = domain.Meta{Date: detail.FirstAirDate, TBD: detail.FirstAirDate == nil}
		item.IsCompleted = runConcluded(detail.Status)
	}

	if item.Title == "" {
		item.Title = domain.PlaceholderTitle(target.TMDBID)
	}

	return item, nil
}

// Placeholder builds the fallback item persisted when hydration fails, so
// the follow action itself never fails. RetryHydrate can replace it later
// by key.
func (h *Hydrator) Placeholder(target domain.FollowTarget, roles domain.Roles) domain.FollowItem {
	return domain.FollowItem{
		Key:          target.Key(),
		MediaType:    target.MediaType,
		TMDBID:       target.TMDBID,
		Title:        domain.PlaceholderTitle(target.TMDBID),
		PosterPath:   nil,
		Meta:         domain.Meta{TBD: true, Note: placeholderNote},
		AddedAt:      h.now().UnixMilli(),
		SeasonNumber: target.SeasonNumber,
		TargetType:   target.TargetType(),
		DropEnabled:  roles.Drop,
		BingeEnabled: roles.Binge,
	}
}
