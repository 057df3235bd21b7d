// Package cli is pygr's thin command dispatcher: a minimal Command tree
// over the standard library's flag package, with every subcommand
// closing over an already-wired App rather than constructing its own
// collaborators. Argument-parsing polish (shell completion, colorized
// help, man-page generation) is explicitly out of scope — this is the
// dispatcher, not the UX layer.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pygr-project/pygr/pkg/distro"
	"github.com/pygr-project/pygr/pkg/manifest"
	"github.com/pygr-project/pygr/pkg/observability"
	"github.com/pygr-project/pygr/pkg/profile"
	"github.com/pygr-project/pygr/pkg/search"
	"github.com/pygr-project/pygr/pkg/transaction"
)

// App bundles every collaborator a subcommand might need. It is built
// once at startup by cmd/pygr/main.go and handed to NewRootCommand.
type App struct {
	Coordinator *transaction.Coordinator
	Manifest    *manifest.Manifest
	Profile     *profile.Profile
	Searcher    search.Searcher
	Distro      distro.Bridge
	Health      *observability.HealthChecker
	Log         *observability.Logger

	// MetricsRegistry, if set, is dumped in Prometheus text exposition
	// format by `pygr doctor`. nil disables that section of the report.
	MetricsRegistry *prometheus.Registry
}

// Command is one node of the CLI tree.
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand builds the full pygr command tree over app.
func NewRootCommand(app *App) *Command {
	root := &Command{
		Name:        "pygr",
		Description: "pygr - a per-user, source-building package manager",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("pygr", flag.ExitOnError),
	}

	root.Subcommands["install"] = newInstallCommand(app)
	root.Subcommands["uninstall"] = newUninstallCommand(app)
	root.Subcommands["upgrade"] = newUpgradeCommand(app)
	root.Subcommands["apply"] = newApplyCommand(app)
	root.Subcommands["rollback"] = newRollbackCommand(app)
	root.Subcommands["search"] = newSearchCommand(app)
	root.Subcommands["doctor"] = newDoctorCommand(app)

	return root
}

// Execute dispatches os.Args[1:] to the matching subcommand.
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	subcmd, ok := c.Subcommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return subcmd.Run(args[1:])
}

func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	for name, cmd := range c.Subcommands {
		fmt.Printf("  %-12s %s\n", name, cmd.Description)
	}
	return nil
}
