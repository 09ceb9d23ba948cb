package cache

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/nwaycache/lru"
)

// EvictReason explains why an entry was evicted.
type EvictReason = lru.EvictReason

const (
	// EvictCapacity — Put overflowed the way's capacity.
	EvictCapacity = lru.EvictCapacity
	// EvictResize — UpdateCapacity shrank the way below its occupancy.
	EvictResize = lru.EvictResize
	// EvictRejected — a validator passed to GetValidated rejected the value.
	EvictRejected = lru.EvictRejected
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Hooks may run under a way lock; keep them cheap and non-blocking.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Resident adjusts the resident entry count by delta.
	Resident(delta int)
	// WayCapacity reports the per-way capacity after New/UpdateCapacity.
	WayCapacity(n int)
}

// Options configures the cache. The zero value is usable:
//   - nil Hash    => xxHash over common key types (panics on others)
//   - nil Equal   => == on the key, byte slices by content
//   - nil Metrics => NoopMetrics
//   - nil Logger  => discard
type Options[K, V any] struct {
	// Hash routes keys to ways (hash mod ways) and buckets them inside a way.
	// Equal keys must hash identically.
	Hash func(k K) uint64
	// Equal decides key equivalence inside a way.
	Equal func(a, b K) bool

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every eviction under the way lock; keep it
	// lightweight and never call back into the cache from it.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	Logger *slog.Logger
}
