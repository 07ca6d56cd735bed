package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/voicebridge/logger"
	"github.com/kbukum/voicebridge/translation"
)

// Config configures the in-memory cache.
type Config struct {
	// TTL is how long entries stay valid.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
	// MaxEntries bounds the cache size; eviction runs on insert.
	MaxEntries int `json:"max_entries" mapstructure:"max_entries"`
}

// DefaultConfig returns the cache defaults: one hour TTL, 1000 entries.
func DefaultConfig() Config {
	return Config{
		TTL:        time.Hour,
		MaxEntries: 1000,
	}
}

type entry struct {
	result    translation.Result
	expiresAt time.Time
}

// Cache is the in-memory translation cache. A single mutex guards the whole
// read-prune-write sequence so concurrent segments cannot evict each
// other's just-written entries mid-operation.
type Cache struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	entries map[string]entry

	counters
}

// New creates an in-memory cache.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	return &Cache{
		cfg:     cfg,
		log:     logger.Get("cache"),
		entries: make(map[string]entry),
	}
}

// Get returns the cached result for the request's exact key.
func (c *Cache) Get(_ context.Context, req translation.Request) (*translation.Result, bool) {
	if res := c.lookup(Key(req)); res != nil {
		c.hit()
		return res, true
	}
	c.miss()
	return nil, false
}

// GetWithFallback tries the exact key first, then the "any" mirror. The
// probe pair counts as a single request in the stats.
func (c *Cache) GetWithFallback(_ context.Context, req translation.Request) (*translation.Result, bool) {
	if res := c.lookup(Key(req)); res != nil {
		c.hit()
		return res, true
	}
	if req.Service != translation.ServiceAny && req.Service != "" {
		if res := c.lookup(KeyForService(req, translation.ServiceAny)); res != nil {
			c.hit()
			return res, true
		}
	}
	c.miss()
	return nil, false
}

// Set stores the result under the request's key and mirrors it under the
// "any" key when the service is specific.
func (c *Cache) Set(_ context.Context, req translation.Request, result *translation.Result) {
	if result == nil {
		return
	}
	expiresAt := time.Now().Add(c.cfg.TTL)
	e := entry{result: *result, expiresAt: expiresAt}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(req)] = e
	if req.Service != translation.ServiceAny && req.Service != "" {
		c.entries[KeyForService(req, translation.ServiceAny)] = e
	}
	c.evictLocked()
}

// Stats returns the running hit/miss counters.
func (c *Cache) Stats() Stats {
	return c.snapshot()
}

// Len returns the current entry count, expired entries included until the
// next lookup or eviction touches them.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// lookup returns a copy of the live entry for key, deleting it if expired.
func (c *Cache) lookup(key string) *translation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	res := e.result
	return &res
}

// evictLocked enforces MaxEntries: expired entries go first, then the
// entries nearest their expiry, oldest first. Must be called with the
// mutex held.
func (c *Cache) evictLocked() {
	if len(c.entries) <= c.cfg.MaxEntries {
		return
	}

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.cfg.MaxEntries {
		return
	}

	type aging struct {
		key       string
		expiresAt time.Time
	}
	byExpiry := make([]aging, 0, len(c.entries))
	for key, e := range c.entries {
		byExpiry = append(byExpiry, aging{key: key, expiresAt: e.expiresAt})
	}
	sort.Slice(byExpiry, func(i, j int) bool {
		return byExpiry[i].expiresAt.Before(byExpiry[j].expiresAt)
	})

	for _, a := range byExpiry {
		if len(c.entries) <= c.cfg.MaxEntries {
			break
		}
		delete(c.entries, a.key)
	}

	c.log.Debug("cache evicted to capacity", map[string]interface{}{"entries": len(c.entries)})
}

// compile-time interface check
var _ Store = (*Cache)(nil)
