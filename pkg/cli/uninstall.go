package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/pygr-project/pygr/pkg/transaction"
)

func newUninstallCommand(app *App) *Command {
	cmd := &Command{
		Name:        "uninstall",
		Description: "Uninstall one or more packages by name",
		Flags:       flag.NewFlagSet("uninstall", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runUninstall(app, cmd, args) }
	return cmd
}

func runUninstall(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	names := cmd.Flags.Args()
	if len(names) == 0 {
		return fmt.Errorf("uninstall: at least one package name is required")
	}

	err := app.Coordinator.Uninstall(context.Background(), names)
	if errors.Is(err, transaction.ErrNoChange) {
		fmt.Printf("nothing to uninstall for %v\n", names)
		return nil
	}
	if err != nil {
		return fmt.Errorf("uninstall failed: %w", err)
	}
	fmt.Printf("uninstalled %v\n", names)
	return nil
}
