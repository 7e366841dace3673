package follow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dropbinge/dropbinge/internal/api"
	"github.com/dropbinge/dropbinge/internal/domain"
)

// followRecord is the follow API's wire representation of one follow.
type followRecord struct {
	ID           int64             `json:"id"`
	TargetType   domain.TargetType `json:"target_type"`
	TMDBID       int               `json:"tmdb_id"`
	SeasonNumber *int              `json:"season_number"`

	// CachePayload is the embedded metadata snapshot; it spares a
	// hydration round trip when listing.
	CachePayload *cachePayload `json:"cache_payload"`

	StatusRaw         *string `json:"status_raw"`
	ReleaseDate       *string `json:"release_date"`
	FirstAirDate      *string `json:"first_air_date"`
	SeasonAirDate     *string `json:"season_air_date"`
	NotifyDateChanges bool    `json:"notify_date_changes"`
	NotifySeasonBinge bool    `json:"notify_season_binge_ready"`
	NotifyRunEnded    bool    `json:"notify_full_run_concluded"`
}

// cachePayload is the loosely shaped server metadata bag, decoded into
// explicit nullable fields at this boundary instead of being poked at
// downstream.
type cachePayload struct {
	Title      *string          `json:"title"`
	Name       *string          `json:"name"`
	PosterPath *string          `json:"poster_path"`
	Status     *string          `json:"status"`
	Episodes   []episodePayload `json:"episodes"`
}

type episodePayload struct {
	AirDate *string `json:"air_date"`
}

type followListResponse struct {
	Follows []followRecord `json:"follows"`
}

// RemoteAdapter performs authenticated follow CRUD against the tracking
// service. It implements domain.FollowRepository.
type RemoteAdapter struct {
	api    *api.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewRemoteAdapter creates a remote follow adapter.
func NewRemoteAdapter(apiClient *api.Client, logger *slog.Logger) *RemoteAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteAdapter{api: apiClient, logger: logger, now: time.Now}
}

// List fetches the account's follows and maps each record to a FollowItem.
func (r *RemoteAdapter) List(ctx context.Context) ([]domain.FollowItem, error) {
	var resp followListResponse
	if err := r.api.Get(ctx, "/api/my/follows", &resp); err != nil {
		return nil, err
	}

	items := make([]domain.FollowItem, 0, len(resp.Follows))
	for _, record := range resp.Follows {
		items = append(items, r.mapRecord(record))
	}
	return items, nil
}

// Create submits a new follow. A season follow must carry its season
// number; other target types must omit it, which the wire shape enforces.
func (r *RemoteAdapter) Create(ctx context.Context, target domain.FollowTarget, prefs *domain.Prefs) error {
	targetType := target.TargetType()
	if targetType == domain.TargetTVSeason && target.SeasonNumber == nil {
		return fmt.Errorf("season follow requires a season number")
	}

	payload := struct {
		TargetType   domain.TargetType `json:"target_type"`
		TMDBID       int               `json:"tmdb_id"`
		SeasonNumber *int              `json:"season_number,omitempty"`
		Prefs        *domain.Prefs     `json:"prefs,omitempty"`
	}{
		TargetType: targetType,
		TMDBID:     target.TMDBID,
		Prefs:      prefs,
	}
	if targetType == domain.TargetTVSeason {
		payload.SeasonNumber = target.SeasonNumber
	}

	var created struct {
		ID int64 `json:"id"`
	}
	return r.api.Post(ctx, "/api/my/follows", payload, &created)
}

// DeleteByKey resolves key to a server id by re-listing and matching on the
// computed key, guarding against stale local ids, then deletes. No match
// means the caller's intent is already satisfied, so it is a no-op.
func (r *RemoteAdapter) DeleteByKey(ctx context.Context, key string) error {
	match, err := r.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if match == nil {
		r.logger.Debug("delete skipped, no follow matches key", "key", key)
		return nil
	}
	return r.api.Delete(ctx, fmt.Sprintf("/api/my/follows/%d", match.ServerID))
}

// UpdatePrefs replaces the notification preferences of a follow.
func (r *RemoteAdapter) UpdatePrefs(ctx context.Context, serverID int64, prefs domain.Prefs) error {
	payload := struct {
		Prefs domain.Prefs `json:"prefs"`
	}{Prefs: prefs}
	return r.api.Patch(ctx, fmt.Sprintf("/api/my/follows/%d", serverID), payload, nil)
}

// FindByKey returns the mapped server record whose key matches, or nil.
func (r *RemoteAdapter) FindByKey(ctx context.Context, key string) (*domain.FollowItem, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Key == key {
			return &items[i], nil
		}
	}
	return nil, nil
}

// mapRecord converts one server record into the unified FollowItem shape.
// The server's target type is authoritative for media type and season.
func (r *RemoteAdapter) mapRecord(record followRecord) domain.FollowItem {
	mediaType := domain.MediaTypeTV
	if record.TargetType == domain.TargetMovie {
		mediaType = domain.MediaTypeMovie
	}

	var seasonNumber *int
	if record.TargetType == domain.TargetTVSeason {
		seasonNumber = record.SeasonNumber
	}

	title := domain.PlaceholderTitle(record.TMDBID)
	var posterPath *string
	if record.CachePayload != nil {
		if record.CachePayload.Title != nil && *record.CachePayload.Title != "" {
			title = *record.CachePayload.Title
		} else if record.CachePayload.Name != nil && *record.CachePayload.Name != "" {
			title = *record.CachePayload.Name
		}
		posterPath = record.CachePayload.PosterPath
	}

	var date *string
	switch record.TargetType {
	case domain.TargetMovie:
		date = record.ReleaseDate
	case domain.TargetTVSeason:
		date = record.SeasonAirDate
	default:
		date = record.FirstAirDate
	}

	bingeEnabled := false
	switch record.TargetType {
	case domain.TargetTVFull:
		bingeEnabled = record.NotifyRunEnded
	case domain.TargetTVSeason:
		bingeEnabled = record.NotifySeasonBinge
	}

	status := ""
	if record.StatusRaw != nil {
		status = *record.StatusRaw
	} else if record.CachePayload != nil && record.CachePayload.Status != nil {
		status = *record.CachePayload.Status
	}

	today := todayISO(r.now())
	completed := false
	switch record.TargetType {
	case domain.TargetMovie:
		completed = movieReleased(status, record.ReleaseDate, today)
	case domain.TargetTVFull:
		completed = runConcluded(status)
	case domain.TargetTVSeason:
		if record.CachePayload != nil && record.CachePayload.Episodes != nil {
			episodes := make([]domain.Episode, 0, len(record.CachePayload.Episodes))
			for _, ep := range record.CachePayload.Episodes {
				episodes = append(episodes, domain.Episode{AirDate: ep.AirDate})
			}
			completed = seasonCompleted(episodes, today)
		}
	}

	return domain.FollowItem{
		Key:          domain.FollowKey(mediaType, record.TMDBID, seasonNumber),
		MediaType:    mediaType,
		TMDBID:       record.TMDBID,
		Title:        title,
		PosterPath:   posterPath,
		Meta:         domain.Meta{Date: date, TBD: date == nil},
		AddedAt:      r.now().UnixMilli(),
		SeasonNumber: seasonNumber,
		TargetType:   record.TargetType,
		ServerID:     record.ID,
		DropEnabled:  record.NotifyDateChanges,
		BingeEnabled: bingeEnabled,
		IsCompleted:  completed,
	}
}
