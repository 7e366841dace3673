package follow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dropbinge/dropbinge/internal/domain"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

// memGuest is an in-memory domain.GuestStore.
type memGuest struct {
	mu    sync.Mutex
	items []domain.FollowItem
	saves int
}

func (m *memGuest) List() []domain.FollowItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.FollowItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *memGuest) Save(items []domain.FollowItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]domain.FollowItem, len(items))
	copy(m.items, items)
	m.saves++
}

// tokenState is a settable domain.AuthState.
type tokenState struct {
	token string
}

func (t *tokenState) Token() string { return t.token }

// fakeCatalog is a scripted domain.MetadataRepository. Setting fail makes
// every lookup error; calls counts total lookups. A non-nil gate parks
// every lookup until the channel is closed.
type fakeCatalog struct {
	mu      sync.Mutex
	fail    bool
	calls   int
	gate    chan struct{}
	movies  map[int]*domain.MovieDetail
	series  map[int]*domain.SeriesDetail
	seasons map[string]*domain.SeasonDetail
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies:  make(map[int]*domain.MovieDetail),
		series:  make(map[int]*domain.SeriesDetail),
		seasons: make(map[string]*domain.SeasonDetail),
	}
}

func (f *fakeCatalog) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCatalog) begin() error {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return fmt.Errorf("catalog unavailable")
	}
	return nil
}

func (f *fakeCatalog) MovieDetail(ctx context.Context, tmdbID int) (*domain.MovieDetail, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	detail, ok := f.movies[tmdbID]
	if !ok {
		return nil, fmt.Errorf("movie %d not found", tmdbID)
	}
	return detail, nil
}

func (f *fakeCatalog) SeriesDetail(ctx context.Context, tmdbID int) (*domain.SeriesDetail, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	detail, ok := f.series[tmdbID]
	if !ok {
		return nil, fmt.Errorf("series %d not found", tmdbID)
	}
	return detail, nil
}

func (f *fakeCatalog) SeasonDetail(ctx context.Context, tmdbID, seasonNumber int) (*domain.SeasonDetail, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	detail, ok := f.seasons[fmt.Sprintf("%d/%d", tmdbID, seasonNumber)]
	if !ok {
		return nil, fmt.Errorf("season %d/%d not found", tmdbID, seasonNumber)
	}
	return detail, nil
}

// fakeRemote is a scripted domain.FollowRepository backed by a slice.
type fakeRemote struct {
	mu      sync.Mutex
	items   []domain.FollowItem
	nextID  int64
	listErr error

	creates int
	deletes int
	patches int
}

func (f *fakeRemote) List(ctx context.Context) ([]domain.FollowItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.FollowItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeRemote) Create(ctx context.Context, target domain.FollowTarget, prefs *domain.Prefs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	for _, item := range f.items {
		if item.Key == target.Key() {
			return domain.ErrAlreadyFollowing
		}
	}
	f.nextID++
	roles := domain.DefaultRoles(target.MediaType)
	if prefs != nil {
		roles = domain.Roles{
			Drop:  prefs.NotifyDateChanges,
			Binge: prefs.NotifySeasonBingeReady || prefs.NotifyFullRunConcluded,
		}
	}
	f.items = append([]domain.FollowItem{{
		Key:          target.Key(),
		MediaType:    target.MediaType,
		TMDBID:       target.TMDBID,
		Title:        domain.PlaceholderTitle(target.TMDBID),
		SeasonNumber: target.SeasonNumber,
		TargetType:   target.TargetType(),
		ServerID:     f.nextID,
		DropEnabled:  roles.Drop,
		BingeEnabled: roles.Binge,
	}}, f.items...)
	return nil
}

func (f *fakeRemote) DeleteByKey(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	kept := f.items[:0:0]
	for _, item := range f.items {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeRemote) UpdatePrefs(ctx context.Context, serverID int64, prefs domain.Prefs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches++
	for i := range f.items {
		if f.items[i].ServerID == serverID {
			f.items[i].DropEnabled = prefs.NotifyDateChanges
			f.items[i].BingeEnabled = prefs.NotifySeasonBingeReady || prefs.NotifyFullRunConcluded
			return nil
		}
	}
	return domain.ErrFollowNotFound
}

func (f *fakeRemote) FindByKey(ctx context.Context, key string) (*domain.FollowItem, error) {
	items, err := f.List(ctx)
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
