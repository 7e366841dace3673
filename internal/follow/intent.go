package follow

import (
	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/store"
)

const intentKey = "pending"

// Intent is a follow action captured before a login redirect and replayed
// once authenticated.
type Intent struct {
	TargetType   domain.TargetType `json:"targetType"`
	MediaType    domain.MediaType  `json:"mediaType"`
	TMDBID       int               `json:"tmdbId"`
	SeasonNumber *int              `json:"seasonNumber,omitempty"`
}

// Target converts the stored intent back into a follow target.
func (i Intent) Target() domain.FollowTarget {
	return domain.FollowTarget{
		MediaType:    i.MediaType,
		TMDBID:       i.TMDBID,
		SeasonNumber: i.SeasonNumber,
	}
}

// IntentStore persists at most one pending follow intent.
type IntentStore struct {
	kv *store.KV
}

// NewIntentStore creates an intent store over the local KV.
func NewIntentStore(kv *store.KV) *IntentStore {
	return &IntentStore{kv: kv}
}

// Set records the pending intent, replacing any existing one.
func (s *IntentStore) Set(intent Intent) {
	s.kv.Set(store.BucketIntent, intentKey, intent)
}

// Get returns the pending intent, or nil when none is stored or the
// record is corrupt.
func (s *IntentStore) Get() *Intent {
	var intent Intent
	if !s.kv.Get(store.BucketIntent, intentKey, &intent) {
		return nil
	}
	if intent.TMDBID == 0 {
		return nil
	}
	return &intent
}

// Clear removes the pending intent.
func (s *IntentStore) Clear() {
	s.kv.Delete(store.BucketIntent, intentKey)
}
