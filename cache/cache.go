package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tsawler/scribe/model"
)

// DefaultMaxEntries bounds the in-memory cache when no limit is configured.
const DefaultMaxEntries = 1024

// Fingerprint derives the cache key for an extraction. configJSON must be a
// canonical serialization (sorted keys) so field order cannot split entries.
func Fingerprint(content []byte, mimeType string, configJSON []byte) string {
	contentHash := xxhash.Sum64(content)

	d := xxhash.New()
	d.Write(configJSON)
	d.WriteString("\x00")
	d.WriteString(mimeType)

	return fmt.Sprintf("%016x-%016x", contentHash, d.Sum64())
}

// Stats are the cache counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Store is an optional persistent layer behind the in-memory cache.
type Store interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Clear() error
	Close() error
}

// Cache is a bounded LRU over extraction results with single-flight
// computation and an optional persistent store.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recent
	max     int
	hits    uint64
	misses  uint64

	group  singleflight.Group
	store  Store
	logger zerolog.Logger
}

type entry struct {
	key    string
	result *model.ExtractionResult
}

// New builds a cache bounded to maxEntries (DefaultMaxEntries when <= 0).
// store may be nil for memory-only caching.
func New(maxEntries int, store Store, logger zerolog.Logger) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		max:     maxEntries,
		store:   store,
		logger:  logger,
	}
}

// GetOrCompute returns the cached result for key, or runs compute exactly
// once per key across concurrent callers and caches its result. Store errors
// degrade to bypass.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*model.ExtractionResult, error)) (*model.ExtractionResult, error) {
	if r, ok := c.lookup(key); ok {
		return r, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have filled the entry between the
		// miss and this call.
		if r, ok := c.peek(key); ok {
			return r, nil
		}
		if r, ok := c.loadPersistent(key); ok {
			c.put(key, r)
			return r, nil
		}

		r, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, r)
		c.savePersistent(key, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ExtractionResult), nil
}

// lookup is a counting read: it bumps recency and the hit/miss counters.
func (c *Cache) lookup(key string) (*model.ExtractionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		return el.Value.(*entry).result, true
	}
	c.misses++
	return nil, false
}

// peek reads without touching the counters.
func (c *Cache) peek(key string) (*model.ExtractionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry).result, true
	}
	return nil, false
}

func (c *Cache) put(key string, r *model.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).result = r
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, result: r})
	for len(c.entries) > c.max {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *Cache) loadPersistent(key string) (*model.ExtractionResult, bool) {
	if c.store == nil {
		return nil, false
	}
	data, ok, err := c.store.Load(key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store read failed, bypassing")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var r model.ExtractionResult
	if err := json.Unmarshal(data, &r); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store entry corrupt, bypassing")
		return nil, false
	}
	return &r, true
}

func (c *Cache) savePersistent(key string, r *model.ExtractionResult) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store serialization failed")
		return
	}
	if err := c.store.Save(key, data); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store write failed")
	}
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// Clear drops every entry, in memory and in the persistent store, and
// resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("cache store clear failed")
		}
	}
}

// Close releases the persistent store, if any.
func (c *Cache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
