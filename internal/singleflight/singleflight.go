// Package singleflight coalesces concurrent calls for equivalent keys.
package singleflight

import (
	"context"
	"errors"
	"sync"
)

// ErrPanicked is what followers receive when the leader's fn panicked.
var ErrPanicked = errors.New("singleflight: leader panicked")

// Group coalesces concurrent function calls for equivalent keys so that
// the supplied fn runs at most once per flight. Keys are matched with the
// same hash/equality strategy the cache uses, so K need not be comparable.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn.
type Group[K, V any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool

	mu sync.Mutex
	m  map[uint64][]*call[K, V]
}

type call[K, V any] struct {
	key  K
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// New returns a Group matching keys by hash and equal.
func New[K, V any](hash func(K) uint64, equal func(a, b K) bool) *Group[K, V] {
	return &Group[K, V]{hash: hash, equal: equal, m: make(map[uint64][]*call[K, V])}
}

// Do runs fn once for the given key. Concurrent calls with an equivalent
// key wait for the shared result. If ctx is cancelled in a follower, that
// follower returns ctx.Err() while the leader keeps running fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	h := g.hash(key)

	g.mu.Lock()
	if c := g.find(h, key); c != nil {
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[K, V]{key: key, done: make(chan struct{})}
	g.m[h] = append(g.m[h], c)
	g.mu.Unlock()

	// Unregister even if fn panics, so followers of later flights don't
	// attach to a call that will never finish.
	defer func() {
		close(c.done)
		g.mu.Lock()
		g.forget(h, c)
		g.mu.Unlock()
	}()

	c.err = ErrPanicked // overwritten unless fn panics
	c.val, c.err = fn()
	return c.val, c.err
}

// find returns the in-flight call for key (mu held).
func (g *Group[K, V]) find(h uint64, key K) *call[K, V] {
	for _, c := range g.m[h] {
		if g.equal(c.key, key) {
			return c
		}
	}
	return nil
}

// forget drops c from its bucket (mu held).
func (g *Group[K, V]) forget(h uint64, c *call[K, V]) {
	calls := g.m[h]
	for i, x := range calls {
		if x == c {
			calls = append(calls[:i], calls[i+1:]...)
			break
		}
	}
	if len(calls) == 0 {
		delete(g.m, h)
	} else {
		g.m[h] = calls
	}
}
