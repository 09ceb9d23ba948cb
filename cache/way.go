package cache

import (
	"sync"

	"github.com/IvanBrykalov/nwaycache/internal/util"
	"github.com/IvanBrykalov/nwaycache/lru"
)

// way is one independent partition of the cache: a recency-ordered map
// guarded by its own mutex. Every method holds mu for its whole body and
// releases it through defer, so a panicking validator or visitor still
// unlocks. mu is never copied: ways are only ever built by newWay.
type way[K, V any] struct {
	// ---- guarded by mu ----
	mu  sync.Mutex
	lru *lru.LRU[K, V]

	metrics Metrics

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedCounter
	misses util.PaddedCounter
	evicts util.PaddedCounter
}

// newWay builds a way with a fresh lock and an empty LRU of the given capacity.
func newWay[K, V any](capacity int, opt Options[K, V]) *way[K, V] {
	w := &way[K, V]{
		lru:     lru.New[K, V](capacity, opt.Hash, opt.Equal),
		metrics: opt.Metrics,
	}
	onEvict := opt.OnEvict
	w.lru.OnEvict(func(k K, v V, reason lru.EvictReason) {
		w.evicts.Add(1)
		w.metrics.Evict(reason)
		w.metrics.Resident(-1)
		if onEvict != nil {
			onEvict(k, v, reason)
		}
	})
	return w
}

// Put inserts or replaces k→v as newest, evicting the oldest on overflow.
func (w *way[K, V]) Put(k K, v V) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lru.Put(k, v) {
		w.metrics.Resident(1)
	}
}

// Get looks k up and, on a hit, asks valid whether the value is still
// usable. A rejected value is evicted and reported as a miss. If valid
// panics the entry is left in place and the panic propagates.
func (w *way[K, V]) Get(k K, valid func(V) bool) (V, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.lru.Get(k)
	if !ok {
		w.miss()
		var zero V
		return zero, false
	}
	if valid != nil && !valid(v) {
		w.lru.Evict(k, EvictRejected)
		w.miss()
		var zero V
		return zero, false
	}
	w.hit()
	return v, true
}

// GetOr returns the value for k, or def (not inserted) on a miss.
func (w *way[K, V]) GetOr(k K, def V) V {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.lru.Get(k)
	if !ok {
		w.miss()
		return def
	}
	w.hit()
	return v
}

// Erase removes k if present.
func (w *way[K, V]) Erase(k K) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Explicit removal is not counted as an eviction.
	if w.lru.Erase(k) {
		w.metrics.Resident(-1)
	}
}

// Invalidate drops every entry and returns how many were dropped.
func (w *way[K, V]) Invalidate() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.lru.Len()
	w.lru.Invalidate()
	if n > 0 {
		w.metrics.Resident(-n)
	}
	return n
}

// VisitAll calls fn for each entry, newest first, under the lock.
func (w *way[K, V]) VisitAll(fn func(k K, v V)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lru.VisitAll(fn)
}

// SetCapacity resizes the way and returns the number of entries evicted.
func (w *way[K, V]) SetCapacity(n int) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lru.SetCapacity(n)
}

// Len returns the number of resident entries in this way.
func (w *way[K, V]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lru.Len()
}

func (w *way[K, V]) hit() {
	w.hits.Add(1)
	w.metrics.Hit()
}

func (w *way[K, V]) miss() {
	w.misses.Add(1)
	w.metrics.Miss()
}
