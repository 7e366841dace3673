// Package cache holds the time-boxed browse-results cache: a fast bounded
// memory tier over the durable local store, read-through with promotion.
// The cache only ever holds derived data; clearing it is always safe.
package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/store"
)

const (
	// DefaultTTL bounds how long a browse page is served without refetch.
	DefaultTTL = 10 * time.Minute

	defaultMaxEntries = 256
)

// Entry is one cached browse page.
type Entry struct {
	Items      []domain.TitleSummary `json:"items"`
	Page       int                   `json:"page"`
	TotalPages *int                  `json:"totalPages"`
	UpdatedAt  int64                 `json:"updatedAt"` // epoch millis
}

// BrowseCache is the two-tier TTL cache for browse list pages.
type BrowseCache struct {
	mu     sync.Mutex
	memory *lru.Cache[string, Entry]
	kv     *store.KV
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewBrowseCache creates a browse cache over the durable store. A zero ttl
// selects DefaultTTL.
func NewBrowseCache(kv *store.KV, ttl time.Duration, logger *slog.Logger) *BrowseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	memory, _ := lru.New[string, Entry](defaultMaxEntries)
	return &BrowseCache{
		memory: memory,
		kv:     kv,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (c *BrowseCache) expired(entry Entry) bool {
	age := c.now().UnixMilli() - entry.UpdatedAt
	return age > c.ttl.Milliseconds()
}

// Get returns the cached page for key, consulting the memory tier first
// and promoting durable hits. Expired entries are purged from both tiers.
func (c *BrowseCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.memory.Get(key); ok {
		if c.expired(entry) {
			c.remove(key)
			return Entry{}, false
		}
		return entry, true
	}

	var entry Entry
	if !c.kv.Get(store.BucketBrowse, key, &entry) {
		return Entry{}, false
	}
	// A durable record without a timestamp is malformed, treat as a miss.
	if entry.UpdatedAt == 0 {
		c.remove(key)
		return Entry{}, false
	}
	if c.expired(entry) {
		c.remove(key)
		return Entry{}, false
	}

	c.memory.Add(key, entry)
	return entry, true
}

// Set writes the page to both tiers unconditionally, stamping it now.
func (c *BrowseCache) Set(key string, page domain.BrowsePage) {
	entry := Entry{
		Items:      page.Items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		UpdatedAt:  c.now().UnixMilli(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory.Add(key, entry)
	if err := c.kv.Set(store.BucketBrowse, key, entry); err != nil {
		// Durable-tier failures never interrupt a read path.
		c.logger.Warn("failed to persist browse cache entry", "key", key, "error", err)
	}
}

// Clear removes entries whose key starts with prefix from both tiers.
// An empty prefix flushes everything.
func (c *BrowseCache) Clear(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix == "" {
		c.memory.Purge()
		c.kv.DeletePrefix(store.BucketBrowse, "")
		return
	}

	for _, key := range c.memory.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.memory.Remove(key)
		}
	}
	c.kv.DeletePrefix(store.BucketBrowse, prefix)
}

// remove purges a single key from both tiers. Caller holds c.mu.
func (c *BrowseCache) remove(key string) {
	c.memory.Remove(key)
	c.kv.Delete(store.BucketBrowse, key)
}
