// Package builder runs a recipe's build and install commands against a
// materialized source tree under a declared install prefix, optionally
// isolated in a Docker container.
package builder

import "context"

// Runner executes a single shell command in workDir with env and returns
// its captured stdout/stderr. A non-nil error means the command failed:
// it either could not be run at all or exited non-zero. Implementations
// wrap ErrBuildFailed in both cases.
type Runner interface {
	Run(ctx context.Context, workDir string, env []string, command string) (stdout, stderr string, err error)

	// Close releases any resources the runner holds (container client
	// connections, etc). Safe to call on a runner that was never used.
	Close() error
}
