// Package distro bridges a "distro:<pm>:<name>" manifest entry to the
// host's native package manager. It is opaque to the core by design: the
// transaction coordinator knows only that a pm/name pair can be removed,
// never what apt, brew, or dnf actually did.
package distro

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pygr-project/pygr/pkg/observability"
)

// Bridge installs and removes packages through a host-native package
// manager.
type Bridge interface {
	Install(ctx context.Context, pm, name string) error
	Remove(ctx context.Context, pm, name string) error
}

// commandTemplate is the argv shape for one package manager's install
// and remove subcommands. {{name}} is substituted with the target
// package name.
type commandTemplate struct {
	install []string
	remove  []string
}

// templates is deliberately small: only the package managers a distro:
// manifest entry plausibly names are covered; any other pm is rejected
// with ErrUnsupportedPM.
var templates = map[string]commandTemplate{
	"apt":    {install: []string{"apt-get", "install", "-y", "{{name}}"}, remove: []string{"apt-get", "remove", "-y", "{{name}}"}},
	"dnf":    {install: []string{"dnf", "install", "-y", "{{name}}"}, remove: []string{"dnf", "remove", "-y", "{{name}}"}},
	"brew":   {install: []string{"brew", "install", "{{name}}"}, remove: []string{"brew", "uninstall", "{{name}}"}},
	"pacman": {install: []string{"pacman", "-S", "--noconfirm", "{{name}}"}, remove: []string{"pacman", "-R", "--noconfirm", "{{name}}"}},
	"apk":    {install: []string{"apk", "add", "{{name}}"}, remove: []string{"apk", "del", "{{name}}"}},
}

// ShellBridge shells out to the resolved package manager binary.
type ShellBridge struct {
	log *observability.Logger
}

// New builds a ShellBridge.
func New(log *observability.Logger) *ShellBridge {
	return &ShellBridge{log: log}
}

func substitute(argv []string, name string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		if a == "{{name}}" {
			out[i] = name
			continue
		}
		out[i] = a
	}
	return out
}

func (b *ShellBridge) run(ctx context.Context, pm string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if b.log != nil {
			b.log.WithField("pm", pm).WithField("output", string(output)).WithError(err).Error("distro command failed")
		}
		return fmt.Errorf("distro: %s %v: %w", pm, argv, err)
	}
	return nil
}

// Install implements Bridge.
func (b *ShellBridge) Install(ctx context.Context, pm, name string) error {
	tmpl, ok := templates[pm]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedPM, pm)
	}
	return b.run(ctx, pm, substitute(tmpl.install, name))
}

// Remove implements Bridge. It satisfies transaction.DistroRemover.
func (b *ShellBridge) Remove(ctx context.Context, pm, name string) error {
	tmpl, ok := templates[pm]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedPM, pm)
	}
	return b.run(ctx, pm, substitute(tmpl.remove, name))
}
