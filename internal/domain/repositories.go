package domain

import (
	"context"
)

// GuestStore persists the device-local follow list used before login.
// Implementations must swallow storage failures: List degrades to an empty
// list, Save to a no-op.
type GuestStore interface {
	// List returns the stored guest follows, newest first.
	List() []FollowItem

	// Save overwrites the stored list with the full sequence (last writer wins).
	Save(items []FollowItem)
}

// FollowRepository provides authenticated CRUD against the follow service.
type FollowRepository interface {
	// List fetches the account's follows and maps them to FollowItems.
	List(ctx context.Context) ([]FollowItem, error)

	// Create submits a new follow. The server enforces uniqueness and is
	// authoritative for duplicates.
	Create(ctx context.Context, target FollowTarget, prefs *Prefs) error

	// DeleteByKey resolves key to a server-side id by re-listing, then
	// deletes. A miss is a no-op, not an error.
	DeleteByKey(ctx context.Context, key string) error

	// UpdatePrefs replaces the notification preferences of a follow.
	UpdatePrefs(ctx context.Context, serverID int64, prefs Prefs) error

	// FindByKey returns the server record whose computed key matches, or
	// nil when no record matches.
	FindByKey(ctx context.Context, key string) (*FollowItem, error)
}

// MetadataRepository provides read-only detail lookups against the external
// catalog. It is treated as unreliable; callers must tolerate failures.
type MetadataRepository interface {
	// MovieDetail returns catalog detail for a movie
	MovieDetail(ctx context.Context, tmdbID int) (*MovieDetail, error)

	// SeriesDetail returns catalog detail for a full TV run
	SeriesDetail(ctx context.Context, tmdbID int) (*SeriesDetail, error)

	// SeasonDetail returns catalog detail for one season of a TV run
	SeasonDetail(ctx context.Context, tmdbID, seasonNumber int) (*SeasonDetail, error)
}

// AuthState reports whether requests should use the authenticated backend.
// The stored bearer token is the signal; an empty token means guest mode.
type AuthState interface {
	// Token returns the current bearer token, or "" when unauthenticated.
	Token() string
}
