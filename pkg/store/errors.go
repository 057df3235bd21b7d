package store

import "errors"

// ErrStoreIO is returned when a filesystem operation on the store fails.
var ErrStoreIO = errors.New("store i/o error")
