package cache

import "context"

// Cache is a sharded, in-memory key/value cache interface.
// All methods are safe for concurrent use by multiple goroutines.
//
// Single-key operations cost amortized O(1) under one way lock.
type Cache[K, V any] interface {
	// Put inserts or updates k→v and marks it most recently used.
	Put(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, the entry is marked most recently used.
	Get(k K) (V, bool)

	// GetValidated is Get gated by valid: a value for which valid
	// returns false is evicted and reported as absent.
	GetValidated(k K, valid func(V) bool) (V, bool)

	// GetOr returns the value for k, or def when k is absent.
	GetOr(k K, def V) V

	// InvalidateByKey deletes k if present.
	InvalidateByKey(k K)

	// Invalidate deletes every entry.
	Invalidate()

	// VisitAll calls fn for every resident entry (read-only).
	VisitAll(fn func(k K, v V))

	// Size returns the total number of resident entries (snapshot).
	Size() int

	// UpdateCapacity changes the capacity of every way.
	UpdateCapacity(wayCapacity int)

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)
}

var _ Cache[string, int] = (*NWay[string, int])(nil)
