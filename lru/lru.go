// Package lru implements a recency-ordered map: a bounded key/value store
// that evicts the least recently touched entry first.
//
// Keys are bucketed by a caller-supplied hash and compared with a
// caller-supplied equality, so any key type (including non-comparable
// ones) and custom equivalences work. An LRU is NOT safe for concurrent
// use; callers serialize access (the cache package wraps each LRU with
// its own mutex).
package lru

// EvictReason explains why an entry was evicted.
type EvictReason int

const (
	// EvictCapacity: Put pushed occupancy above capacity.
	EvictCapacity EvictReason = iota
	// EvictResize: SetCapacity shrank capacity below occupancy.
	EvictResize
	// EvictRejected: the caller evicted the entry via Evict, e.g. after a
	// validator decided the value is no longer usable.
	EvictRejected
)

// String returns a stable lowercase name, suitable as a metric label.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictResize:
		return "resize"
	case EvictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// EvictFunc observes evictions. It runs synchronously inside the mutating
// call, after the entry has been unlinked.
type EvictFunc[K, V any] func(k K, v V, reason EvictReason)

// LRU is a single-shard recency-ordered map with a mutable capacity.
// Put/Get/GetOr/Erase are O(1) amortized; Invalidate, VisitAll and a
// shrinking SetCapacity are O(occupancy).
type LRU[K, V any] struct {
	buckets map[uint64][]*node[K, V]
	head    *node[K, V] // MRU
	tail    *node[K, V] // LRU
	len     int
	cap     int

	hash    func(K) uint64
	equal   func(a, b K) bool
	onEvict EvictFunc[K, V]
}

// New returns an empty LRU holding at most capacity entries.
// A non-positive capacity keeps nothing: every Put is evicted at once.
// hash and equal must agree: equal keys must hash identically.
func New[K, V any](capacity int, hash func(K) uint64, equal func(a, b K) bool) *LRU[K, V] {
	return &LRU[K, V]{
		buckets: make(map[uint64][]*node[K, V], max(capacity, 0)),
		cap:     max(capacity, 0),
		hash:    hash,
		equal:   equal,
	}
}

// OnEvict installs fn as the eviction observer (nil disables it).
// Explicit removals (Erase, Invalidate) are not reported.
func (l *LRU[K, V]) OnEvict(fn EvictFunc[K, V]) { l.onEvict = fn }

// Put inserts or replaces k→v and makes it the newest entry, then evicts
// the oldest entries until occupancy fits capacity.
// It reports whether k was newly inserted.
func (l *LRU[K, V]) Put(k K, v V) (inserted bool) {
	h := l.hash(k)
	if n := l.lookup(h, k); n != nil {
		n.val = v
		l.moveToFront(n)
		return false
	}

	n := &node[K, V]{key: k, val: v, hash: h}
	l.buckets[h] = append(l.buckets[h], n)
	l.pushFront(n)
	l.trim(EvictCapacity)
	return true
}

// Get returns the value for k and marks it newest.
// A miss has no side effects.
func (l *LRU[K, V]) Get(k K) (V, bool) {
	n := l.lookup(l.hash(k), k)
	if n == nil {
		var zero V
		return zero, false
	}
	l.moveToFront(n)
	return n.val, true
}

// GetOr is Get that returns def on a miss. def is never inserted.
func (l *LRU[K, V]) GetOr(k K, def V) V {
	if v, ok := l.Get(k); ok {
		return v
	}
	return def
}

// Erase removes k if present and reports whether it was.
func (l *LRU[K, V]) Erase(k K) bool {
	n := l.lookup(l.hash(k), k)
	if n == nil {
		return false
	}
	l.remove(n)
	return true
}

// Evict removes k like Erase, but reports the removal to the eviction
// observer with the given reason.
func (l *LRU[K, V]) Evict(k K, reason EvictReason) bool {
	n := l.lookup(l.hash(k), k)
	if n == nil {
		return false
	}
	l.evict(n, reason)
	return true
}

// Invalidate drops every entry. Capacity is unchanged.
func (l *LRU[K, V]) Invalidate() {
	// Unlink so dropped nodes don't keep each other alive.
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next = nil, nil
		n = next
	}
	clear(l.buckets)
	l.head, l.tail = nil, nil
	l.len = 0
}

// VisitAll calls fn for every entry from newest to oldest without touching
// recency. It is linear in occupancy; use it for diagnostics, not hot paths.
// fn must not modify the LRU.
func (l *LRU[K, V]) VisitAll(fn func(k K, v V)) {
	for n := l.head; n != nil; n = n.next {
		fn(n.key, n.val)
	}
}

// SetCapacity changes the capacity and synchronously evicts the oldest
// entries while occupancy exceeds it. Negative values are treated as 0.
// It returns the number of entries evicted.
func (l *LRU[K, V]) SetCapacity(capacity int) (evicted int) {
	l.cap = max(capacity, 0)
	return l.trim(EvictResize)
}

// Len returns the current occupancy.
func (l *LRU[K, V]) Len() int { return l.len }

// Capacity returns the current capacity.
func (l *LRU[K, V]) Capacity() int { return l.cap }

// -------------------- internals --------------------

func (l *LRU[K, V]) lookup(h uint64, k K) *node[K, V] {
	for _, n := range l.buckets[h] {
		if l.equal(n.key, k) {
			return n
		}
	}
	return nil
}

// trim evicts from the tail until len <= cap.
func (l *LRU[K, V]) trim(reason EvictReason) int {
	evicted := 0
	for l.len > l.cap && l.tail != nil {
		l.evict(l.tail, reason)
		evicted++
	}
	return evicted
}

func (l *LRU[K, V]) evict(n *node[K, V], reason EvictReason) {
	l.remove(n)
	if l.onEvict != nil {
		l.onEvict(n.key, n.val, reason)
	}
}

// remove unlinks n from both the list and its bucket.
func (l *LRU[K, V]) remove(n *node[K, V]) {
	l.unlink(n)
	l.len--

	b := l.buckets[n.hash]
	for i, x := range b {
		if x == n {
			last := len(b) - 1
			b[i] = b[last]
			b[last] = nil
			b = b[:last]
			break
		}
	}
	if len(b) == 0 {
		delete(l.buckets, n.hash)
	} else {
		l.buckets[n.hash] = b
	}
}

// pushFront links n as MRU in O(1).
func (l *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

// moveToFront promotes n to MRU in O(1).
func (l *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
