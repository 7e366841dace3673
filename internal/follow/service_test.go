package follow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropbinge/dropbinge/internal/domain"
)

type storeFixture struct {
	auth    *tokenState
	guest   *memGuest
	remote  *fakeRemote
	catalog *fakeCatalog
	store   *Store
}

func newStoreFixture() *storeFixture {
	auth := &tokenState{}
	guest := &memGuest{}
	remote := &fakeRemote{}
	catalog := newFakeCatalog()
	return &storeFixture{
		auth:    auth,
		guest:   guest,
		remote:  remote,
		catalog: catalog,
		store:   NewStore(auth, guest, remote, newTestHydrator(catalog), nil),
	}
}

func TestGuestAddIsIdempotentByKey(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31"), Status: "Released"}
	target := domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603}

	first, err := f.store.Add(context.Background(), target)
	require.NoError(t, err)
	second, err := f.store.Add(context.Background(), target)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, f.guest.List(), 1)
	require.Equal(t, 1, f.catalog.callCount(), "repeat add must not re-hydrate")
}

func TestConcurrentSameKeyAddsStoreOneItem(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31"), Status: "Released"}
	f.catalog.gate = make(chan struct{})
	target := domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603}

	const adders = 2
	results := make([]domain.FollowItem, adders)
	errs := make([]error, adders)
	var done sync.WaitGroup
	for i := 0; i < adders; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			results[i], errs[i] = f.store.Add(context.Background(), target)
		}(i)
	}

	// Both adds must be parked inside hydration before either can write,
	// so the existence re-check under the lock is what dedupes them.
	require.Eventually(t, func() bool {
		return f.catalog.callCount() == adders
	}, time.Second, time.Millisecond)
	close(f.catalog.gate)
	done.Wait()

	for i := 0; i < adders; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "movie:603", results[i].Key)
	}
	items := f.guest.List()
	require.Len(t, items, 1)
	require.Equal(t, "The Matrix", items[0].Title)
}

func TestGuestAddPrependsNewestFirst(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31")}
	f.catalog.series[1399] = &domain.SeriesDetail{Name: "Game of Thrones", FirstAirDate: strPtr("2011-04-17"), Status: "Ended"}

	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)
	_, err = f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399})
	require.NoError(t, err)

	items := f.guest.List()
	require.Len(t, items, 2)
	require.Equal(t, "tv:1399", items[0].Key)
	require.Equal(t, "movie:603", items[1].Key)
}

func TestGuestAddStoresPlaceholderOnHydrationFailure(t *testing.T) {
	f := newStoreFixture()
	f.catalog.setFail(true)

	item, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err, "follow action must not fail on catalog trouble")
	require.Equal(t, "TMDB 603", item.Title)
	require.Equal(t, "retry hydrate", item.Meta.Note)
	require.True(t, item.Meta.TBD)

	stored := f.guest.List()
	require.Len(t, stored, 1)
	require.Equal(t, item, stored[0])
}

func TestRetryHydrateReplacesPlaceholderInPlace(t *testing.T) {
	f := newStoreFixture()
	f.catalog.series[1399] = &domain.SeriesDetail{Name: "Game of Thrones", FirstAirDate: strPtr("2011-04-17"), Status: "Ended"}

	// Seed with a hydrated neighbor on each side of the placeholder.
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31")}
	f.catalog.movies[550] = &domain.MovieDetail{Title: "Fight Club", ReleaseDate: strPtr("1999-10-15")}
	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)
	f.catalog.setFail(true)
	placeholder, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399})
	require.NoError(t, err)
	f.catalog.setFail(false)
	_, err = f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 550})
	require.NoError(t, err)

	hydrated, err := f.store.RetryHydrate(context.Background(), placeholder)
	require.NoError(t, err)
	require.Equal(t, "Game of Thrones", hydrated.Title)
	require.Empty(t, hydrated.Meta.Note)

	items := f.guest.List()
	require.Len(t, items, 3)
	require.Equal(t, "movie:550", items[0].Key)
	require.Equal(t, "tv:1399", items[1].Key, "replacement keeps list position")
	require.Equal(t, "Game of Thrones", items[1].Title)
	require.Equal(t, "movie:603", items[2].Key)
}

func TestRetryHydrateFailureLeavesItemUntouched(t *testing.T) {
	f := newStoreFixture()
	f.catalog.setFail(true)

	placeholder, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)

	got, err := f.store.RetryHydrate(context.Background(), placeholder)
	require.NoError(t, err)
	require.Equal(t, placeholder, got)
	require.Equal(t, placeholder, f.guest.List()[0])
}

func TestRetryHydrateRemovedEntryIsNotResurrected(t *testing.T) {
	f := newStoreFixture()
	f.catalog.setFail(true)

	placeholder, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(context.Background(), placeholder.Key))

	f.catalog.setFail(false)
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31")}
	savesBefore := f.guest.saves

	got, err := f.store.RetryHydrate(context.Background(), placeholder)
	require.NoError(t, err)
	require.Equal(t, placeholder, got, "nothing was stored, so nothing newer is reported")
	require.Empty(t, f.guest.List())
	require.Equal(t, savesBefore, f.guest.saves, "an unmatched retry must not rewrite the list")
}

func TestRetryHydrateAuthenticatedPassesThrough(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"

	item := domain.FollowItem{Key: "movie:603", MediaType: domain.MediaTypeMovie, TMDBID: 603, Title: "The Matrix"}
	got, err := f.store.RetryHydrate(context.Background(), item)
	require.NoError(t, err)
	require.Equal(t, item, got)
	require.Zero(t, f.catalog.callCount())
}

func TestGuestRemoveIsIdempotent(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix"}

	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)

	require.NoError(t, f.store.Remove(context.Background(), "movie:603"))
	require.Empty(t, f.guest.List())
	savesAfterFirst := f.guest.saves

	require.NoError(t, f.store.Remove(context.Background(), "movie:603"))
	require.Equal(t, savesAfterFirst, f.guest.saves, "removing an absent key must not rewrite the list")
}

func TestSeasonAndFullRunFollowsCoexist(t *testing.T) {
	f := newStoreFixture()
	f.catalog.series[1399] = &domain.SeriesDetail{Name: "Game of Thrones", Status: "Ended"}
	f.catalog.seasons["1399/1"] = &domain.SeasonDetail{Name: "Season 1", AirDate: strPtr("2011-04-17")}

	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399})
	require.NoError(t, err)
	_, err = f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399, SeasonNumber: intPtr(1)})
	require.NoError(t, err)
	require.Len(t, f.guest.List(), 2)

	require.NoError(t, f.store.Remove(context.Background(), "tv:1399:season:1"))
	items := f.guest.List()
	require.Len(t, items, 1)
	require.Equal(t, "tv:1399", items[0].Key)
}

func TestAuthenticatedAddCreatesThenHydrates(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix", ReleaseDate: strPtr("1999-03-31"), Status: "Released"}

	item, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)
	require.Equal(t, "The Matrix", item.Title)
	require.Equal(t, 1, f.remote.creates)
	require.Empty(t, f.guest.List(), "authenticated adds never touch the guest store")
}

func TestAuthenticatedAddHydrationFailureYieldsPlaceholder(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.catalog.setFail(true)

	item, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err, "follow is already tracked server-side")
	require.Equal(t, "retry hydrate", item.Meta.Note)
	require.Equal(t, 1, f.remote.creates)
}

func TestAuthenticatedAddSurfacesCreateError(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.remote.items = []domain.FollowItem{{Key: "movie:603", ServerID: 1}}

	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.ErrorIs(t, err, domain.ErrAlreadyFollowing)
}

func TestListSwitchesBackendWithAuthState(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix"}
	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)
	f.remote.items = []domain.FollowItem{{Key: "tv:1399", MediaType: domain.MediaTypeTV, TMDBID: 1399, ServerID: 9}}

	items, err := f.store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "movie:603", items[0].Key)

	f.auth.token = "tok"
	items, err = f.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "tv:1399", items[0].Key)

	f.auth.token = ""
	items, err = f.store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "movie:603", items[0].Key, "guest list survives a sign-in round trip")
}

func TestRefreshKeepsSnapshotOnFailure(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.remote.items = []domain.FollowItem{{Key: "movie:603", ServerID: 1}}

	items, err := f.store.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	f.remote.listErr = fmt.Errorf("service down")
	items, err = f.store.Refresh(context.Background())
	require.Error(t, err)
	require.Len(t, items, 1, "previous snapshot stays visible")
	require.Equal(t, "movie:603", items[0].Key)
}

func TestIsFollowing(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix"}
	_, err := f.store.Add(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603})
	require.NoError(t, err)

	ok, err := f.store.IsFollowing(context.Background(), "movie:603")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.store.IsFollowing(context.Background(), "tv:1399")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetRolesGuestUpdatesExisting(t *testing.T) {
	f := newStoreFixture()
	f.catalog.series[1399] = &domain.SeriesDetail{Name: "Game of Thrones", Status: "Ended"}
	target := domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399}

	_, err := f.store.Add(context.Background(), target)
	require.NoError(t, err)

	require.NoError(t, f.store.SetRoles(context.Background(), target, domain.Roles{Drop: false, Binge: true}))
	items := f.guest.List()
	require.Len(t, items, 1)
	require.False(t, items[0].DropEnabled)
	require.True(t, items[0].BingeEnabled)
}

func TestSetRolesGuestFollowsWhenMissing(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix"}

	require.NoError(t, f.store.SetRoles(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603}, domain.Roles{Drop: true}))
	items := f.guest.List()
	require.Len(t, items, 1)
	require.Equal(t, "movie:603", items[0].Key)
	require.True(t, items[0].DropEnabled)
}

func TestSetRolesGuestAllOffUnfollows(t *testing.T) {
	f := newStoreFixture()
	f.catalog.movies[603] = &domain.MovieDetail{Title: "The Matrix"}
	target := domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603}

	_, err := f.store.Add(context.Background(), target)
	require.NoError(t, err)

	require.NoError(t, f.store.SetRoles(context.Background(), target, domain.Roles{}))
	require.Empty(t, f.guest.List())
}

func TestSetRolesAuthenticatedPatchesExisting(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.remote.items = []domain.FollowItem{{Key: "tv:1399", MediaType: domain.MediaTypeTV, TMDBID: 1399, ServerID: 4, TargetType: domain.TargetTVFull}}

	require.NoError(t, f.store.SetRoles(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399}, domain.Roles{Drop: true, Binge: true}))
	require.Equal(t, 1, f.remote.patches)
	require.Zero(t, f.remote.creates)
	require.True(t, f.remote.items[0].BingeEnabled)
}

func TestSetRolesAuthenticatedCreatesWhenMissing(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"

	require.NoError(t, f.store.SetRoles(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeTV, TMDBID: 1399, SeasonNumber: intPtr(1)}, domain.Roles{Drop: true, Binge: true}))
	require.Equal(t, 1, f.remote.creates)
	require.Len(t, f.remote.items, 1)
	require.Equal(t, "tv:1399:season:1", f.remote.items[0].Key)
}

func TestSetRolesAuthenticatedAllOffDeletes(t *testing.T) {
	f := newStoreFixture()
	f.auth.token = "tok"
	f.remote.items = []domain.FollowItem{{Key: "movie:603", ServerID: 2}}

	require.NoError(t, f.store.SetRoles(context.Background(), domain.FollowTarget{MediaType: domain.MediaTypeMovie, TMDBID: 603}, domain.Roles{}))
	require.Equal(t, 1, f.remote.deletes)
	require.Empty(t, f.remote.items)
}
