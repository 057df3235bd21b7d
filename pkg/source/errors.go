package source

import "errors"

var (
	// ErrUnresolvableRef is returned when a ref cannot be resolved to a
	// commit against the remote.
	ErrUnresolvableRef = errors.New("source: unresolvable ref")

	// ErrFetchFailed is returned when cloning, fetching, or checking out
	// the resolved commit fails.
	ErrFetchFailed = errors.New("source: fetch failed")
)
