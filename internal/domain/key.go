package domain

import "fmt"

// FollowKey derives the canonical identity key for a followable target.
// A TV follow with a season number keys as "tv:<id>:season:<n>"; everything
// else keys as "<mediaType>:<id>". This is the single key definition shared
// by every component that builds or compares keys.
func FollowKey(mediaType MediaType, tmdbID int, seasonNumber *int) string {
	if mediaType == MediaTypeTV && seasonNumber != nil {
		return fmt.Sprintf("tv:%d:season:%d", tmdbID, *seasonNumber)
	}
	return fmt.Sprintf("%s:%d", mediaType, tmdbID)
}

// PlaceholderTitle is the synthesized display title used when no catalog
// metadata is available for a title.
func PlaceholderTitle(tmdbID int) string {
	return fmt.Sprintf("TMDB %d", tmdbID)
}
