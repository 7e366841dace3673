package follow

import (
	"log/slog"

	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/store"
)

const (
	guestFollowsKey       = "guest:v2"
	legacyGuestFollowsKey = "guest:v1"
)

// GuestAdapter persists the unauthenticated follow list in the local store.
// It implements domain.GuestStore. Storage failures are swallowed: reads
// degrade to an empty list, writes to a no-op.
type GuestAdapter struct {
	kv     *store.KV
	logger *slog.Logger
}

// NewGuestAdapter creates a guest follow store over the local KV.
func NewGuestAdapter(kv *store.KV, logger *slog.Logger) *GuestAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuestAdapter{kv: kv, logger: logger}
}

// List returns the stored guest follows, newest first. A missing or
// corrupt record yields an empty list. Legacy v1 records missing role
// flags are upgraded in place on first read.
func (g *GuestAdapter) List() []domain.FollowItem {
	var items []domain.FollowItem
	if g.kv.Get(store.BucketFollows, guestFollowsKey, &items) {
		return items
	}

	// Legacy records predate the notification role flags.
	var legacy []legacyFollowItem
	if !g.kv.Get(store.BucketFollows, legacyGuestFollowsKey, &legacy) {
		return nil
	}
	migrated := make([]domain.FollowItem, 0, len(legacy))
	for _, item := range legacy {
		migrated = append(migrated, item.upgrade())
	}
	if len(migrated) > 0 {
		g.Save(migrated)
	}
	return migrated
}

// Save overwrites the stored guest list (last writer wins, no merge).
func (g *GuestAdapter) Save(items []domain.FollowItem) {
	if items == nil {
		items = []domain.FollowItem{}
	}
	if err := g.kv.Set(store.BucketFollows, guestFollowsKey, items); err != nil {
		g.logger.Warn("failed to persist guest follows", "error", err)
	}
}

// legacyFollowItem is the pre-roles guest record shape.
type legacyFollowItem struct {
	Key          string           `json:"key"`
	MediaType    domain.MediaType `json:"mediaType"`
	TMDBID       int              `json:"tmdbId"`
	Title        string           `json:"title"`
	PosterPath   *string          `json:"posterPath"`
	Meta         domain.Meta      `json:"meta"`
	AddedAt      int64            `json:"addedAt"`
	SeasonNumber *int             `json:"seasonNumber,omitempty"`
}

func (l legacyFollowItem) upgrade() domain.FollowItem {
	roles := domain.DefaultRoles(l.MediaType)
	return domain.FollowItem{
		Key:          l.Key,
		MediaType:    l.MediaType,
		TMDBID:       l.TMDBID,
		Title:        l.Title,
		PosterPath:   l.PosterPath,
		Meta:         l.Meta,
		AddedAt:      l.AddedAt,
		SeasonNumber: l.SeasonNumber,
		TargetType:   domain.ResolveTargetType(l.MediaType, l.SeasonNumber),
		DropEnabled:  roles.Drop,
		BingeEnabled: roles.Binge,
	}
}
