package lru

// node is an intrusive doubly linked list element owned by one LRU.
// It keeps the key hash so removal never rehashes the key.
type node[K, V any] struct {
	key  K
	val  V
	hash uint64

	// head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]
}
