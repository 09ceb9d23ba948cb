package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Put/Get/GetValidated/InvalidateByKey semantics under
// arbitrary string inputs. Guards against panics and checks core invariants.
// NOTE: We cap key/value lengths to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzCache_PutGetInvalidate(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(2))
	f.Add("b", "2", uint8(3))
	f.Add("αβγ", "δ", uint8(7))
	f.Add("emoji🙂", "🙂🙂", uint8(16))
	f.Add("long", strings.Repeat("x", 1024), uint8(255))

	f.Fuzz(func(t *testing.T, k, v string, ways uint8) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c, err := New[string, string](int(ways), 4, Options[string, string]{})
		if ways == 0 {
			if err == nil {
				t.Fatal("zero ways must be rejected")
			}
			return
		}
		if err != nil {
			t.Fatalf("New(%d): %v", ways, err)
		}
		if idx := c.WayIndex(k); idx < 0 || idx >= int(ways) {
			t.Fatalf("WayIndex %d out of range [0,%d)", idx, ways)
		}

		// Put -> Get must return the same value.
		c.Put(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// A validator sees exactly the stored value.
		if _, ok := c.GetValidated(k, func(x string) bool { return x == v }); !ok {
			t.Fatal("validator must accept the stored value")
		}

		// InvalidateByKey must delete it.
		c.InvalidateByKey(k)
		if _, ok := c.Get(k); ok {
			t.Fatal("key must be absent after InvalidateByKey")
		}
		if c.Size() != 0 {
			t.Fatalf("Size want 0, got %d", c.Size())
		}

		// Re-inserting then rejecting leaves nothing behind.
		c.Put(k, v)
		if _, ok := c.GetValidated(k, func(string) bool { return false }); ok {
			t.Fatal("rejecting validator must miss")
		}
		if got := c.GetOr(k, "default"); got != "default" {
			t.Fatalf("rejected key must be gone, got %q", got)
		}
	})
}
