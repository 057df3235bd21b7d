package builder

import "errors"

// ErrBuildFailed is returned when a recipe's build or install command
// exits non-zero.
var ErrBuildFailed = errors.New("build failed")

// ErrDockerNotAvailable is returned when sandboxing was requested but the
// Docker daemon could not be reached.
var ErrDockerNotAvailable = errors.New("docker is not available")
