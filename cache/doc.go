// Package cache provides a generic, concurrency-safe, bounded N-way LRU
// cache: a fixed number of independent least-recently-used "ways", each
// guarded by its own mutex, with deterministic key routing, validator-gated
// reads, bulk invalidation, live resizing and full-cache iteration.
//
// Design
//
//   - Routing: a key goes to way hash(key) mod ways. The way count and the
//     hash are fixed at construction, so a key always maps to the same way,
//     whatever UpdateCapacity does.
//
//   - Storage: each way is an lru.LRU: hash buckets for lookups and an
//     intrusive MRU↔LRU doubly linked list for ordering. Keys are compared
//     with Options.Equal, so custom equivalences and non-comparable key
//     types are supported when Options.Hash/Equal are supplied.
//
//   - Capacity: every way holds at most the per-way capacity. Eviction is
//     synchronous: Put and UpdateCapacity return only once the way fits.
//
//   - Validators: GetValidated(k, valid) evicts a value the caller judges
//     stale (e.g. expired) instead of returning it. There is no expiry clock.
//
//   - Consistency: single-key operations are linearizable per way.
//     Invalidate, VisitAll, Size and UpdateCapacity lock one way at a time
//     and are not atomic across ways.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Resident/WayCapacity
//     signals. By default NoopMetrics is used; see package metrics/prom.
//
// Basic usage
//
//	c, err := cache.New[string, []byte](16, 1024, cache.Options[string, []byte]{})
//	if err != nil {
//	    return err
//	}
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.InvalidateByKey("a")
//
// Validator-gated reads
//
//	type item struct {
//	    body    []byte
//	    expires time.Time
//	}
//	v, ok := c.GetValidated("k", func(it item) bool {
//	    return time.Now().Before(it.expires)
//	})
//
// Callbacks passed to GetValidated, VisitAll and Options.OnEvict run under
// a way lock. They must not block and must not call back into the cache.
package cache
