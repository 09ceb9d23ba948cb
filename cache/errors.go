package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrInvalidConfiguration is returned by New when the way count is not
	// positive or the way capacity is negative.
	ErrInvalidConfiguration = errors.New("cache: invalid configuration")

	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")
)
