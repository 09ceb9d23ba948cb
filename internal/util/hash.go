// Package util contains internal helpers (hashing, way routing, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash64 hashes common key types with 64-bit xxHash.
// Supported: string, []byte, [16|32|64]byte, all int/uint widths, uintptr, bool, fmt.Stringer.
// Integers hash their 8 little-endian bytes, so equal values of different
// widths hash alike. For other key types, convert the key to string or
// supply Options.Hash upstream. Unsupported types panic rather than hash poorly.
func Hash64[K any](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	case uint8:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint32:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case uint:
		return hashUint64(uint64(v))
	case uintptr:
		return hashUint64(uint64(v))
	case int8:
		return hashUint64(uint64(v))
	case int16:
		return hashUint64(uint64(v))
	case int32:
		return hashUint64(uint64(v))
	case int64:
		return hashUint64(uint64(v))
	case int:
		return hashUint64(uint64(v))
	case bool:
		if v {
			return hashUint64(1)
		}
		return hashUint64(0)

	// Fallback for pseudo-keys via String() (avoid if you can).
	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Hash64: unsupported key type %T; convert key to string or set Options.Hash", k))
	}
}

// HashString is Hash64 specialised for string keys.
func HashString(s string) uint64 { return xxhash.Sum64String(s) }

func hashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}

// Equal reports whether a and b are the same key using ==, with byte slices
// compared by content. Other non-comparable dynamic types panic, exactly as
// a map lookup would.
func Equal[K any](a, b K) bool {
	if ab, ok := any(a).([]byte); ok {
		bb, _ := any(b).([]byte)
		return bytes.Equal(ab, bb)
	}
	return any(a) == any(b)
}
