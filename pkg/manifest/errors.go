package manifest

import "errors"

var (
	// ErrInvalidEntry is returned when a manifest line does not match any
	// recognized declarative entry grammar.
	ErrInvalidEntry = errors.New("manifest: invalid entry")

	// ErrInvalidRefreshSchedule is returned when a header refresh-schedule
	// cron expression fails to parse.
	ErrInvalidRefreshSchedule = errors.New("manifest: invalid refresh schedule")
)
