// Package follow holds the follow state subsystem: the guest and remote
// persistence adapters, the hydration service, and the orchestrating store
// that the rest of the application reads follows through.
package follow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dropbinge/dropbinge/internal/domain"
)

// Store is the single source of truth for the user's follows. It picks the
// guest or remote backend from the auth state on every call; the two
// backends are never merged. Switching auth state simply makes the next
// List derive the full list from the newly active backend.
type Store struct {
	auth     domain.AuthState
	guest    domain.GuestStore
	remote   domain.FollowRepository
	hydrator *Hydrator
	logger   *slog.Logger

	// guestMu serializes guest read-modify-write cycles so two rapid
	// mutations cannot drop each other's writes. It is never held across
	// network calls.
	guestMu sync.Mutex

	// snapshot is the last successfully listed sequence, kept so a failed
	// refresh can leave the previous view intact.
	snapMu   sync.RWMutex
	snapshot []domain.FollowItem
}

// NewStore creates the follow store orchestrator.
func NewStore(auth domain.AuthState, guest domain.GuestStore, remote domain.FollowRepository, hydrator *Hydrator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		auth:     auth,
		guest:    guest,
		remote:   remote,
		hydrator: hydrator,
		logger:   logger,
	}
}

func (s *Store) authenticated() bool {
	return s.auth.Token() != ""
}

// List returns a freshly derived follow list from the active backend.
// No caching happens at this layer.
func (s *Store) List(ctx context.Context) ([]domain.FollowItem, error) {
	if s.authenticated() {
		return s.remote.List(ctx)
	}
	return s.guest.List(), nil
}

// Refresh lists from the active backend and updates the retained snapshot.
// On failure the previous snapshot stays visible (fail-soft); only the
// error is reported.
func (s *Store) Refresh(ctx context.Context) ([]domain.FollowItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	s.snapMu.Lock()
	s.snapshot = items
	s.snapMu.Unlock()
	return items, nil
}

// Snapshot returns the last successfully refreshed list.
func (s *Store) Snapshot() []domain.FollowItem {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

// Add follows a target. The guest path is idempotent by key and persists a
// placeholder when hydration fails, so the follow action itself never
// fails on catalog trouble. The authenticated path creates server-side
// first (the server enforces uniqueness), then hydrates for display.
func (s *Store) Add(ctx context.Context, target domain.FollowTarget) (domain.FollowItem, error) {
	key := target.Key()
	roles := domain.DefaultRoles(target.MediaType)

	if !s.authenticated() {
		if existing, ok := findByKey(s.guest.List(), key); ok {
			return existing, nil
		}

		item, err := s.hydrator.Hydrate(ctx, target, roles)
		if err != nil {
			s.logger.Warn("hydration failed, storing placeholder", "key", key, "error", err)
			item = s.hydrator.Placeholder(target, roles)
		}

		s.guestMu.Lock()
		defer s.guestMu.Unlock()
		// Re-read under the lock: a concurrent add for the same key may
		// have persisted while we were hydrating.
		items := s.guest.List()
		if existing, ok := findByKey(items, key); ok {
			return existing, nil
		}
		s.guest.Save(append([]domain.FollowItem{item}, items...))
		return item, nil
	}

	if err := s.remote.Create(ctx, target, nil); err != nil {
		return domain.FollowItem{}, err
	}
	item, err := s.hydrator.Hydrate(ctx, target, roles)
	if err != nil {
		// The follow is already tracked server-side; only the display
		// details are missing.
		s.logger.Warn("hydration failed after create", "key", key, "error", err)
		return s.hydrator.Placeholder(target, roles), nil
	}
	return item, nil
}

// Remove unfollows by key. A key that is not present is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.authenticated() {
		return s.remote.DeleteByKey(ctx, key)
	}

	s.guestMu.Lock()
	defer s.guestMu.Unlock()
	items := s.guest.List()
	kept := items[:0:0]
	for _, item := range items {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	if len(kept) != len(items) {
		s.guest.Save(kept)
	}
	return nil
}

// RetryHydrate re-runs hydration for a guest item and replaces the stored
// entry in place. Authenticated items are always fresh (the server embeds
// metadata), so they pass through unchanged. A renewed failure leaves the
// previous item untouched; a retry never regresses a hydrated item.
func (s *Store) RetryHydrate(ctx context.Context, item domain.FollowItem) (domain.FollowItem, error) {
	if s.authenticated() {
		return item, nil
	}

	target := domain.FollowTarget{
		MediaType:    item.MediaType,
		TMDBID:       item.TMDBID,
		SeasonNumber: item.SeasonNumber,
	}
	roles := domain.Roles{Drop: item.DropEnabled, Binge: item.BingeEnabled}

	next, err := s.hydrator.Hydrate(ctx, target, roles)
	if err != nil {
		return item, nil
	}

	s.guestMu.Lock()
	defer s.guestMu.Unlock()
	items := s.guest.List()
	replaced := false
	for i := range items {
		if items[i].Key == item.Key {
			items[i] = next
			replaced = true
		}
	}
	if !replaced {
		// The follow was removed while we were hydrating; nothing to store.
		return item, nil
	}
	s.guest.Save(items)
	return next, nil
}

// IsFollowing reports whether the current backend snapshot contains key.
func (s *Store) IsFollowing(ctx context.Context, key string) (bool, error) {
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	_, ok := findByKey(items, key)
	return ok, nil
}

// SetRoles sets the notification toggles for a target, following it if
// needed and unfollowing it when both toggles are off.
func (s *Store) SetRoles(ctx context.Context, target domain.FollowTarget, roles domain.Roles) error {
	key := target.Key()
	shouldFollow := roles.Drop || roles.Binge
	targetType := target.TargetType()

	if !s.authenticated() {
		if !shouldFollow {
			return s.Remove(ctx, key)
		}

		s.guestMu.Lock()
		items := s.guest.List()
		if idx := indexByKey(items, key); idx >= 0 {
			items[idx].DropEnabled = roles.Drop
			items[idx].BingeEnabled = roles.Binge
			items[idx].TargetType = targetType
			s.guest.Save(items)
			s.guestMu.Unlock()
			return nil
		}
		s.guestMu.Unlock()

		item, err := s.hydrator.Hydrate(ctx, target, roles)
		if err != nil {
			s.logger.Warn("hydration failed, storing placeholder", "key", key, "error", err)
			item = s.hydrator.Placeholder(target, roles)
		}

		s.guestMu.Lock()
		defer s.guestMu.Unlock()
		items = s.guest.List()
		if idx := indexByKey(items, key); idx >= 0 {
			items[idx].DropEnabled = roles.Drop
			items[idx].BingeEnabled = roles.Binge
			items[idx].TargetType = targetType
			s.guest.Save(items)
			return nil
		}
		s.guest.Save(append([]domain.FollowItem{item}, items...))
		return nil
	}

	match, err := s.remote.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if !shouldFollow {
		if match == nil {
			return nil
		}
		return s.remote.DeleteByKey(ctx, key)
	}

	prefs := domain.PrefsForRoles(targetType, roles)
	if match == nil {
		return s.remote.Create(ctx, target, &prefs)
	}
	return s.remote.UpdatePrefs(ctx, match.ServerID, prefs)
}

func findByKey(items []domain.FollowItem, key string) (domain.FollowItem, bool) {
	if idx := indexByKey(items, key); idx >= 0 {
		return items[idx], true
	}
	return domain.FollowItem{}, false
}

func indexByKey(items []domain.FollowItem, key string) int {
	for i := range items {
		if items[i].Key == key {
			return i
		}
	}
	return -1
}
