package binarycache

import "errors"

// ErrCacheMiss is never surfaced past this package: every Fetch failure —
// network error, non-200, corrupt archive — degrades to a (false, nil)
// miss so the caller falls through to the builder.
var ErrCacheMiss = errors.New("binarycache: cache miss")
