package cache

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/voicebridge/translation"
)

// Store is the translation cache contract the orchestrator depends on.
// Implementations must be safe for concurrent use and must degrade to a
// miss rather than returning errors.
type Store interface {
	// Get returns the cached result for the request's exact key, or
	// (nil, false) on a miss. A request with service "any" matches the
	// service-agnostic mirror entry.
	Get(ctx context.Context, req translation.Request) (*translation.Result, bool)
	// GetWithFallback tries the exact key first, then the "any" mirror.
	GetWithFallback(ctx context.Context, req translation.Request) (*translation.Result, bool)
	// Set stores the result under the request's key and, when the
	// service is specific, under the "any" mirror key too.
	Set(ctx context.Context, req translation.Request, result *translation.Result)
	// Stats returns the running hit/miss counters.
	Stats() Stats
}

// Stats holds running cache counters. Exposed for observability, not
// correctness.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Requests uint64 `json:"requests"`
}

// HitRate returns hits divided by total requests, 0 when nothing was asked.
func (s Stats) HitRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests)
}

// counters is the shared atomic stats backing for store implementations.
type counters struct {
	hits     atomic.Uint64
	misses   atomic.Uint64
	requests atomic.Uint64
}

func (c *counters) hit() {
	c.requests.Add(1)
	c.hits.Add(1)
}

func (c *counters) miss() {
	c.requests.Add(1)
	c.misses.Add(1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Requests: c.requests.Load(),
	}
}
