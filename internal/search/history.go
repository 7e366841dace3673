package search

import (
	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/store"
)

const (
	recentKey = "recent"

	// maxRecent caps the retained search history.
	maxRecent = 12
)

// HistoryItem is one remembered search result selection.
type HistoryItem struct {
	Key        string           `json:"key"`
	MediaType  domain.MediaType `json:"mediaType"`
	TMDBID     int              `json:"tmdbId"`
	Title      string           `json:"title"`
	PosterPath *string          `json:"posterPath"`
	Date       *string          `json:"date,omitempty"`
	AddedAt    int64            `json:"addedAt"`
}

// History stores recently selected search results, newest first, deduped
// by follow key and capped at maxRecent.
type History struct {
	kv *store.KV
}

// NewHistory creates a search history over the local KV.
func NewHistory(kv *store.KV) *History {
	return &History{kv: kv}
}

// Recent returns the remembered searches, newest first. Corrupt or missing
// records degrade to an empty list.
func (h *History) Recent() []HistoryItem {
	var items []HistoryItem
	h.kv.Get(store.BucketHistory, recentKey, &items)
	return items
}

// Add remembers a selection, moving an existing entry with the same key to
// the front.
func (h *History) Add(item HistoryItem) {
	existing := h.Recent()
	next := make([]HistoryItem, 0, len(existing)+1)
	next = append(next, item)
	for _, entry := range existing {
		if entry.Key == item.Key {
			continue
		}
		next = append(next, entry)
	}
	if len(next) > maxRecent {
		next = next[:maxRecent]
	}
	h.kv.Set(store.BucketHistory, recentKey, next)
}

// Clear forgets all remembered searches.
func (h *History) Clear() {
	h.kv.Delete(store.BucketHistory, recentKey)
}
