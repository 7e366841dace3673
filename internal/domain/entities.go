package domain

// MediaType identifies the kind of catalog title a follow points at.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// TargetType is the server-side follow classification. It is authoritative
// for remote-backed items; guest items derive it from MediaType and the
// presence of a season number.
type TargetType string

const (
	TargetMovie    TargetType = "movie"
	TargetTVFull   TargetType = "tv_full"
	TargetTVSeason TargetType = "tv_season"
)

// Meta carries the date facts displayed for a follow. TBD is true exactly
// when no relevant date could be resolved.
type Meta struct {
	Date *string `json:"date"`
	TBD  bool    `json:"tbd"`
	Note string  `json:"note,omitempty"`
}

// FollowItem is the unified client-visible follow record, regardless of
// whether it came from the guest store or the remote account.
type FollowItem struct {
	Key          string     `json:"key"`
	MediaType    MediaType  `json:"mediaType"`
	TMDBID       int        `json:"tmdbId"`
	Title        string     `json:"title"`
	PosterPath   *string    `json:"posterPath"`
	Meta         Meta       `json:"meta"`
	AddedAt      int64      `json:"addedAt"` // unix millis, ordering only
	SeasonNumber *int       `json:"seasonNumber,omitempty"`
	TargetType   TargetType `json:"targetType,omitempty"`

	// ServerID is set only for remote-backed items.
	ServerID int64 `json:"serverId,omitempty"`

	// Notification roles.
	DropEnabled  bool `json:"dropEnabled"`
	BingeEnabled bool `json:"bingeEnabled"`

	// IsCompleted marks a released movie, a concluded run, or a fully
	// aired (binge-ready) season.
	IsCompleted bool `json:"isCompleted"`
}

// FollowTarget identifies what the user wants to follow.
type FollowTarget struct {
	MediaType    MediaType
	TMDBID       int
	SeasonNumber *int
}

// Key returns the canonical identity key for the target.
func (t FollowTarget) Key() string {
	return FollowKey(t.MediaType, t.TMDBID, t.SeasonNumber)
}

// TargetType infers the wire target type for the target.
func (t FollowTarget) TargetType() TargetType {
	return ResolveTargetType(t.MediaType, t.SeasonNumber)
}

// ResolveTargetType infers the wire target type from a media type and an
// optional season number.
func ResolveTargetType(mediaType MediaType, seasonNumber *int) TargetType {
	if mediaType == MediaTypeMovie {
		return TargetMovie
	}
	if seasonNumber != nil {
		return TargetTVSeason
	}
	return TargetTVFull
}

// Roles holds the two user-facing notification toggles.
type Roles struct {
	Drop  bool
	Binge bool
}

// DefaultRoles returns the role flags applied when the user has not chosen
// any: date-change alerts on, binge alerts only for TV.
func DefaultRoles(mediaType MediaType) Roles {
	return Roles{Drop: true, Binge: mediaType == MediaTypeTV}
}

// Prefs is the notification preference payload understood by the follow API.
type Prefs struct {
	NotifyDateChanges      bool `json:"notify_date_changes"`
	NotifySeasonBingeReady bool `json:"notify_season_binge_ready"`
	NotifyFullRunConcluded bool `json:"notify_full_run_concluded"`
}

// PrefsForRoles maps the role toggles onto the wire preference fields for
// the given target type. Binge means "season binge ready" for a season
// follow and "full run concluded" for a full run; movies have no binge
// notion.
func PrefsForRoles(targetType TargetType, roles Roles) Prefs {
	p := Prefs{NotifyDateChanges: roles.Drop}
	switch targetType {
	case TargetTVSeason:
		p.NotifySeasonBingeReady = roles.Binge
	case TargetTVFull:
		p.NotifyFullRunConcluded = roles.Binge
	}
	return p
}

// TitleSummary is one entry of a browse list page.
type TitleSummary struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   *string `json:"poster_path"`
	Date         *string `json:"date,omitempty"`
	SeasonNumber *int    `json:"season_number,omitempty"`
	IsCompleted  bool    `json:"is_completed,omitempty"`
}

// DisplayTitle returns whichever of the movie/TV title fields is set.
func (t TitleSummary) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// BrowsePage is one page of browse results.
type BrowsePage struct {
	Items      []TitleSummary
	Page       int
	TotalPages *int
}

// Episode is the slice of season detail needed for binge-ready checks.
type Episode struct {
	AirDate *string
}

// MovieDetail is the catalog detail payload for a movie.
type MovieDetail struct {
	Title       string
	PosterPath  *string
	ReleaseDate *string
	Status      string
}

// SeriesDetail is the catalog detail payload for a full TV run.
type SeriesDetail struct {
	Name         string
	PosterPath   *string
	FirstAirDate *string
	Status       string
}

// SeasonDetail is the catalog detail payload for one TV season.
type SeasonDetail struct {
	Name       string
	PosterPath *string
	AirDate    *string
	Episodes   []Episode
}
