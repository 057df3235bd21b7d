package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pygr-project/pygr/pkg/observability"
	"github.com/pygr-project/pygr/pkg/recipe"
)

// Builder prepares a build directory from a materialized source tree and
// runs a recipe's build and install commands against it under a declared
// install prefix.
type Builder struct {
	runner Runner
	log    *observability.Logger
}

// New probes for a usable Docker daemon when sandbox is requested,
// falling back to direct unsandboxed execution with a warning if Docker
// is unavailable.
func New(ctx context.Context, sandbox bool, log *observability.Logger) *Builder {
	if sandbox {
		if runner, err := NewDockerRunner(ctx, log); err == nil {
			return &Builder{runner: runner, log: log}
		} else {
			log.WithError(err).Warn("sandbox requested but docker is unavailable, falling back to direct execution")
		}
	}
	return &Builder{runner: NewDirectRunner(), log: log}
}

// Close releases the underlying runner's resources.
func (b *Builder) Close() error {
	return b.runner.Close()
}

// Build copies sourceDir into a fresh temporary build directory, composes
// an environment with PATH prefixed by every dependency's bin directory,
// and runs the recipe's build then install commands with {{prefix}}
// substituted for the install root. It returns the install root's path;
// the caller owns removing the enclosing build directory once the
// install root's contents have been moved into the store.
func (b *Builder) Build(ctx context.Context, r *recipe.Recipe, sourceDir string, depStorePaths map[string]string) (string, error) {
	buildDir, err := os.MkdirTemp("", "pygr-build-*")
	if err != nil {
		return "", fmt.Errorf("%w: create build dir: %v", ErrBuildFailed, err)
	}

	if err := copyTree(sourceDir, buildDir); err != nil {
		os.RemoveAll(buildDir)
		return "", fmt.Errorf("%w: copy source: %v", ErrBuildFailed, err)
	}

	installRoot := filepath.Join(buildDir, "install-root")
	if err := os.MkdirAll(installRoot, 0o755); err != nil {
		os.RemoveAll(buildDir)
		return "", fmt.Errorf("%w: create install root: %v", ErrBuildFailed, err)
	}

	env := composeEnv(depStorePaths)

	commands := append(append([]string{}, r.Build.Commands...), r.Install.Commands...)
	for _, cmd := range commands {
		substituted := strings.ReplaceAll(cmd, "{{prefix}}", installRoot)
		stdout, stderr, err := b.runner.Run(ctx, buildDir, env, substituted)
		if err != nil {
			b.log.WithField("recipe", r.Name).WithField("command", substituted).
				WithField("stdout", stdout).WithField("stderr", stderr).
				WithError(err).Error("build command failed")
			os.RemoveAll(buildDir)
			return "", err
		}
	}

	return installRoot, nil
}

// composeEnv returns the parent process environment with PATH prefixed
// by the bin directory of every dependency that has one, in
// deterministic (sorted-by-name) order.
func composeEnv(depStorePaths map[string]string) []string {
	names := make([]string, 0, len(depStorePaths))
	for name := range depStorePaths {
		names = append(names, name)
	}
	sort.Strings(names)

	var prefixes []string
	for _, name := range names {
		bin := filepath.Join(depStorePaths[name], "bin")
		if info, err := os.Stat(bin); err == nil && info.IsDir() {
			prefixes = append(prefixes, bin)
		}
	}

	env := os.Environ()
	if len(prefixes) == 0 {
		return env
	}

	path := os.Getenv("PATH")
	newPath := strings.Join(prefixes, string(os.PathListSeparator)) + string(os.PathListSeparator) + path
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, "PATH="+newPath)
	return out
}

// copyTree recursively copies the contents of src into dst, which must
// already exist.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".git") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}

		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
