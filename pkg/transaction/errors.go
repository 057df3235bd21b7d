package transaction

import "errors"

// ErrNoChange is returned by Uninstall when none of the requested names
// are present in the current generation, so no new generation is needed.
var ErrNoChange = errors.New("transaction: no change")

// ErrKnownBuildFailure is returned by Install when a build cache records
// that the same derivation fingerprint failed to build recently, so the
// builder is not invoked again.
var ErrKnownBuildFailure = errors.New("transaction: known build failure")
