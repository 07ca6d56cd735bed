// Package cache implements the content-addressable translation cache.
//
// A cache key is the injective encoding of the normalized request tuple
// (service, language pair, formatting options, text): two logically
// identical requests always collide and two different requests never do.
// Every write under a specific service also writes a mirror entry under
// the "any" service so later service-agnostic lookups can reuse it.
//
// The default store is in-memory with TTL expiry and oldest-expiry-first
// eviction. A Redis-backed store is available for embedders that want the
// cache shared across processes; Redis enforces TTL natively.
//
// Cache operations never surface errors to the pipeline: a failed store
// read degrades to a miss and a failed write is logged and dropped.
package cache
