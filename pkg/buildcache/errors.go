package buildcache

import "errors"

var (
	// ErrCacheMiss is returned by Get when no record exists for a
	// fingerprint in any configured level.
	ErrCacheMiss = errors.New("buildcache: cache miss")

	// ErrCacheUnavailable is returned when a configured level could not be
	// reached. Callers should treat it as a miss, not a transaction
	// failure — the build cache is a speed optimization, never a
	// correctness dependency.
	ErrCacheUnavailable = errors.New("buildcache: cache unavailable")
)
