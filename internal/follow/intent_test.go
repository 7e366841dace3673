package follow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropbinge/dropbinge/internal/domain"
)

func TestIntentStoreRoundTrip(t *testing.T) {
	s := NewIntentStore(openGuestKV(t))

	s.Set(Intent{TargetType: domain.TargetTVSeason, MediaType: domain.MediaTypeTV, TMDBID: 1399, SeasonNumber: intPtr(1)})

	got := s.Get()
	require.NotNil(t, got)
	require.Equal(t, domain.TargetTVSeason, got.TargetType)
	require.Equal(t, 1399, got.TMDBID)

	target := got.Target()
	require.Equal(t, "tv:1399:season:1", target.Key())
}

func TestIntentStoreEmptyIsNil(t *testing.T) {
	s := NewIntentStore(openGuestKV(t))
	require.Nil(t, s.Get())
}

func TestIntentStoreSetReplaces(t *testing.T) {
	s := NewIntentStore(openGuestKV(t))

	s.Set(Intent{TargetType: domain.TargetMovie, MediaType: domain.MediaTypeMovie, TMDBID: 603})
	s.Set(Intent{TargetType: domain.TargetTVFull, MediaType: domain.MediaTypeTV, TMDBID: 1399})

	got := s.Get()
	require.NotNil(t, got)
	require.Equal(t, 1399, got.TMDBID)
}

func TestIntentStoreClear(t *testing.T) {
	s := NewIntentStore(openGuestKV(t))

	s.Set(Intent{TargetType: domain.TargetMovie, MediaType: domain.MediaTypeMovie, TMDBID: 603})
	s.Clear()
	require.Nil(t, s.Get())
}
