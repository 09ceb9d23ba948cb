package util

import "runtime"

// MaxSuggestedWays caps ReasonableWayCount.
const MaxSuggestedWays = 256

// ReasonableWayCount suggests a way count for callers that have no better
// figure: nextPow2(2*GOMAXPROCS), clamped to [1..MaxSuggestedWays].
// The cache itself never picks a count; this feeds command-line defaults.
func ReasonableWayCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	return min(max(n, 1), MaxSuggestedWays)
}

// WayIndex maps a 64-bit hash to a way index: hash mod ways.
// Power-of-two counts take the mask path, which yields the same index.
// ways must be positive.
func WayIndex(hash uint64, ways int) int {
	if ways <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(ways)) {
		return int(hash & uint64(ways-1))
	}
	return int(hash % uint64(ways))
}
