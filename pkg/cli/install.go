package cli

import (
	"context"
	"flag"
	"fmt"
)

func newInstallCommand(app *App) *Command {
	cmd := &Command{
		Name:        "install",
		Description: "Install one or more packages by recipe spec",
		Flags:       flag.NewFlagSet("install", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runInstall(app, cmd, args) }
	return cmd
}

func runInstall(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	specs := cmd.Flags.Args()
	if len(specs) == 0 {
		return fmt.Errorf("install: at least one package spec is required")
	}

	if err := app.Coordinator.Install(context.Background(), specs); err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	fmt.Printf("installed %v\n", specs)
	return nil
}
