package cli

import (
	"context"
	"flag"
	"fmt"
)

func newUpgradeCommand(app *App) *Command {
	cmd := &Command{
		Name:        "upgrade",
		Description: "Upgrade named packages, or every installed package with no names",
		Flags:       flag.NewFlagSet("upgrade", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runUpgrade(app, cmd, args) }
	return cmd
}

func runUpgrade(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	names := cmd.Flags.Args()

	if err := app.Coordinator.Upgrade(context.Background(), names); err != nil {
		return fmt.Errorf("upgrade failed: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("upgraded every installed package")
	} else {
		fmt.Printf("upgraded %v\n", names)
	}
	return nil
}
