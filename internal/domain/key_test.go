package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestFollowKeyDeterministic(t *testing.T) {
	require.Equal(t, FollowKey(MediaTypeMovie, 603, nil), FollowKey(MediaTypeMovie, 603, nil))
	require.Equal(t, FollowKey(MediaTypeTV, 100, intPtr(2)), FollowKey(MediaTypeTV, 100, intPtr(2)))
}

func TestFollowKeyFormat(t *testing.T) {
	require.Equal(t, "movie:603", FollowKey(MediaTypeMovie, 603, nil))
	require.Equal(t, "tv:1399", FollowKey(MediaTypeTV, 1399, nil))
	require.Equal(t, "tv:100:season:2", FollowKey(MediaTypeTV, 100, intPtr(2)))
	require.Equal(t, "tv:100:season:0", FollowKey(MediaTypeTV, 100, intPtr(0)))
}

func TestFollowKeySeasonDistinctFromFullRun(t *testing.T) {
	require.NotEqual(t, FollowKey(MediaTypeTV, 100, intPtr(2)), FollowKey(MediaTypeTV, 100, nil))
}

func TestFollowKeyMovieIgnoresSeason(t *testing.T) {
	// Seasons only apply to TV; a stray season number must not change a movie key.
	require.Equal(t, "movie:603", FollowKey(MediaTypeMovie, 603, intPtr(1)))
}

func TestResolveTargetType(t *testing.T) {
	require.Equal(t, TargetMovie, ResolveTargetType(MediaTypeMovie, nil))
	require.Equal(t, TargetTVFull, ResolveTargetType(MediaTypeTV, nil))
	require.Equal(t, TargetTVSeason, ResolveTargetType(MediaTypeTV, intPtr(1)))
}

func TestDefaultRoles(t *testing.T) {
	require.Equal(t, Roles{Drop: true, Binge: false}, DefaultRoles(MediaTypeMovie))
	require.Equal(t, Roles{Drop: true, Binge: true}, DefaultRoles(MediaTypeTV))
}

func TestPrefsForRoles(t *testing.T) {
	prefs := PrefsForRoles(TargetTVSeason, Roles{Drop: true, Binge: true})
	require.True(t, prefs.NotifyDateChanges)
	require.True(t, prefs.NotifySeasonBingeReady)
	require.False(t, prefs.NotifyFullRunConcluded)

	prefs = PrefsForRoles(TargetTVFull, Roles{Drop: false, Binge: true})
	require.False(t, prefs.NotifyDateChanges)
	require.False(t, prefs.NotifySeasonBingeReady)
	require.True(t, prefs.NotifyFullRunConcluded)

	prefs = PrefsForRoles(TargetMovie, Roles{Drop: true, Binge: true})
	require.True(t, prefs.NotifyDateChanges)
	require.False(t, prefs.NotifySeasonBingeReady)
	require.False(t, prefs.NotifyFullRunConcluded)
}

func TestPlaceholderTitle(t *testing.T) {
	require.Equal(t, "TMDB 603", PlaceholderTitle(603))
}
