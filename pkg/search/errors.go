package search

import "errors"

// ErrSearchFailed is returned when the remote search request itself
// could not be completed (network error, non-2xx response, malformed
// response body). It is never returned for "no results" — that is a
// zero-length Result slice with a nil error.
var ErrSearchFailed = errors.New("search: request failed")
