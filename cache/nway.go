package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/IvanBrykalov/nwaycache/internal/singleflight"
	"github.com/IvanBrykalov/nwaycache/internal/util"
)

// NWay is an N-way sharded LRU cache. Keys are routed to one of a fixed
// number of ways by hash(key) mod ways; each way is an independent LRU with
// its own capacity and lock. All methods are safe for concurrent use.
//
// Operations on one key lock exactly one way. Whole-cache operations
// (Invalidate, VisitAll, Size, UpdateCapacity) visit the ways one by one,
// never holding two locks at once, so they are not atomic across ways.
type NWay[K, V any] struct {
	ways []*way[K, V]
	hash func(K) uint64

	opt    Options[K, V]
	log    *slog.Logger
	wayCap atomic.Int64 // last capacity applied to every way

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf *singleflight.Group[K, V]
}

// Stats is a snapshot of counters summed across ways.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New constructs a cache with ways independent LRU ways, each holding up
// to wayCapacity entries. It returns ErrInvalidConfiguration (and no cache)
// if ways <= 0 or wayCapacity < 0.
func New[K, V any](ways, wayCapacity int, opt Options[K, V]) (*NWay[K, V], error) {
	if ways <= 0 {
		return nil, fmt.Errorf("%w: ways must be positive, got %d", ErrInvalidConfiguration, ways)
	}
	if wayCapacity < 0 {
		return nil, fmt.Errorf("%w: way capacity must not be negative, got %d", ErrInvalidConfiguration, wayCapacity)
	}

	if opt.Hash == nil {
		opt.Hash = util.Hash64[K]
	}
	if opt.Equal == nil {
		opt.Equal = util.Equal[K]
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}

	ws := make([]*way[K, V], ways)
	for i := range ws {
		ws[i] = newWay(wayCapacity, opt)
	}

	c := &NWay[K, V]{
		ways: ws,
		hash: opt.Hash,
		opt:  opt,
		log:  opt.Logger,
		sf:   singleflight.New[K, V](opt.Hash, opt.Equal),
	}
	c.wayCap.Store(int64(wayCapacity))
	opt.Metrics.WayCapacity(wayCapacity)

	c.log.Debug("nway cache created", slog.Int("ways", ways), slog.Int("way_capacity", wayCapacity))
	return c, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[K, V any](ways, wayCapacity int, opt Options[K, V]) *NWay[K, V] {
	c, err := New[K, V](ways, wayCapacity, opt)
	if err != nil {
		panic(err)
	}
	return c
}

// Always is the validator that accepts every value.
func Always[V any](V) bool { return true }

// ---- Cache[K,V] implementation ----

// Put inserts or updates k→v and makes it the newest entry of its way.
func (c *NWay[K, V]) Put(k K, v V) {
	c.wayFor(k).Put(k, v)
}

// Get returns the value for k and a presence flag.
// A hit makes the entry the newest of its way.
func (c *NWay[K, V]) Get(k K) (V, bool) {
	return c.wayFor(k).Get(k, nil)
}

// GetValidated returns the value for k if present and valid(value) is true.
// If valid returns false the entry is evicted and a miss is reported.
//
// valid runs while the way's lock is held: it must be fast, must not block
// and must never call back into this cache (the lock is not reentrant).
// If valid panics, the entry is kept and the panic propagates.
func (c *NWay[K, V]) GetValidated(k K, valid func(V) bool) (V, bool) {
	return c.wayFor(k).Get(k, valid)
}

// GetOr returns the value for k, or def on a miss. def is not inserted.
func (c *NWay[K, V]) GetOr(k K, def V) V {
	return c.wayFor(k).GetOr(k, def)
}

// InvalidateByKey removes k if present.
func (c *NWay[K, V]) InvalidateByKey(k K) {
	c.wayFor(k).Erase(k)
}

// Invalidate removes every entry, one way at a time.
func (c *NWay[K, V]) Invalidate() {
	dropped := 0
	for _, w := range c.ways {
		dropped += w.Invalidate()
	}
	c.log.Debug("nway cache invalidated", slog.Int("dropped", dropped))
}

// VisitAll calls fn for every entry: ways in index order, newest first
// within a way. Each way is consistent while visited, but entries may be
// added to or removed from other ways meanwhile. It is linear in the
// number of entries; use it for diagnostics, not hot paths.
//
// fn runs under a way lock and must not call back into this cache.
func (c *NWay[K, V]) VisitAll(fn func(k K, v V)) {
	for _, w := range c.ways {
		w.VisitAll(fn)
	}
}

// Size returns the total number of resident entries across all ways.
// The ways are counted one after another, so under concurrent writes the
// result is a best-effort snapshot.
func (c *NWay[K, V]) Size() int {
	total := 0
	for _, w := range c.ways {
		total += w.Len()
	}
	return total
}

// UpdateCapacity sets every way's capacity to wayCapacity (negative means 0),
// evicting the oldest entries of ways that no longer fit.
func (c *NWay[K, V]) UpdateCapacity(wayCapacity int) {
	wayCapacity = max(wayCapacity, 0)
	c.wayCap.Store(int64(wayCapacity))

	evicted := 0
	for _, w := range c.ways {
		evicted += w.SetCapacity(wayCapacity)
	}
	c.opt.Metrics.WayCapacity(wayCapacity)
	c.log.Info("nway cache resized", slog.Int("way_capacity", wayCapacity), slog.Int("evicted", evicted))
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for equivalent keys (singleflight), and
// stores the result. Loader errors are returned and nothing is cached.
// If no Loader is configured, returns ErrNoLoader.
func (c *NWay[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err == nil {
			c.Put(k, v)
		}
		return v, err
	})
}

// Ways returns the fixed number of ways.
func (c *NWay[K, V]) Ways() int { return len(c.ways) }

// WayCapacity returns the per-way capacity currently in effect.
func (c *NWay[K, V]) WayCapacity() int { return int(c.wayCap.Load()) }

// WayIndex returns the way k is routed to. It never changes for the
// lifetime of the cache.
func (c *NWay[K, V]) WayIndex(k K) int {
	return util.WayIndex(c.hash(k), len(c.ways))
}

// Stats returns hit/miss/eviction counters summed across ways.
// No lock is taken; counters are read atomically one at a time.
func (c *NWay[K, V]) Stats() Stats {
	var s Stats
	for _, w := range c.ways {
		s.Hits += w.hits.Load()
		s.Misses += w.misses.Load()
		s.Evictions += w.evicts.Load()
	}
	return s
}

// ---- helpers ----

func (c *NWay[K, V]) wayFor(k K) *way[K, V] {
	return c.ways[c.WayIndex(k)]
}
