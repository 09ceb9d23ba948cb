package cache_test

import (
	"fmt"
	"strings"
	"time"

	"github.com/IvanBrykalov/nwaycache/cache"
)

func ExampleNew() {
	c, err := cache.New[string, int](4, 128, cache.Options[string, int]{})
	if err != nil {
		panic(err)
	}
	c.Put("answer", 42)

	v, ok := c.Get("answer")
	fmt.Println(v, ok)
	fmt.Println(c.GetOr("missing", -1), c.Size())
	// Output:
	// 42 true
	// -1 1
}

func ExampleNew_invalid() {
	_, err := cache.New[string, int](0, 128, cache.Options[string, int]{})
	fmt.Println(err)
	// Output: cache: invalid configuration: ways must be positive, got 0
}

func ExampleNWay_GetValidated() {
	type token struct {
		value   string
		expires time.Time
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fresh := func(t token) bool { return now.Before(t.expires) }

	c := cache.MustNew[string, token](2, 16, cache.Options[string, token]{})
	c.Put("svc-a", token{value: "t1", expires: now.Add(time.Minute)})
	c.Put("svc-b", token{value: "t2", expires: now.Add(-time.Minute)})

	if t, ok := c.GetValidated("svc-a", fresh); ok {
		fmt.Println("svc-a:", t.value)
	}
	if _, ok := c.GetValidated("svc-b", fresh); !ok {
		fmt.Println("svc-b: stale, evicted")
	}
	fmt.Println("size:", c.Size())
	// Output:
	// svc-a: t1
	// svc-b: stale, evicted
	// size: 1
}

func ExampleOptions_customEquality() {
	c := cache.MustNew[string, string](8, 16, cache.Options[string, string]{
		Hash: func(k string) uint64 {
			var h uint64 = 14695981039346656037
			for _, b := range []byte(strings.ToLower(k)) {
				h ^= uint64(b)
				h *= 1099511628211
			}
			return h
		},
		Equal: strings.EqualFold,
	})
	c.Put("Content-Type", "text/plain")

	v, _ := c.Get("content-type")
	fmt.Println(v, c.Size())
	// Output: text/plain 1
}
