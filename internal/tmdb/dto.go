package tmdb

// movieDetails is the catalog payload for a movie.
type movieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Status      string  `json:"status"`
}

// tvDetails is the catalog payload for a full TV run.
type tvDetails struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	FirstAirDate string  `json:"first_air_date"`
	LastAirDate  string  `json:"last_air_date"`
	Status       string  `json:"status"`
}

// seasonDetails is the catalog payload for one season.
type seasonDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	PosterPath   *string          `json:"poster_path"`
	AirDate      string           `json:"air_date"`
	SeasonNumber int              `json:"season_number"`
	Episodes     []episodeDetails `json:"episodes"`
}

type episodeDetails struct {
	AirDate       *string `json:"air_date"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
}

// listResponse is one page of browse results from the catalog proxy.
type listResponse struct {
	Results    []listEntry `json:"results"`
	Page       int         `json:"page"`
	TotalPages *int        `json:"total_pages"`
}

type listEntry struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   *string `json:"poster_path"`
	Date         *string `json:"date,omitempty"`
	ReleaseDate  *string `json:"release_date,omitempty"`
	FirstAirDate *string `json:"first_air_date,omitempty"`
	SeasonNumber *int    `json:"season_number,omitempty"`
	IsCompleted  bool    `json:"is_completed,omitempty"`
}
