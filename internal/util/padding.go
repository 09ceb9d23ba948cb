package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
// 64 works well in practice.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields into distinct cache lines.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedCounter is an atomic uint64 padded to exactly one cache line, so
// counters bumped by different goroutines do not false-share.
type PaddedCounter struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Must be exactly one cache line.
var _ [CacheLineSize - int(unsafe.Sizeof(PaddedCounter{}))]byte
