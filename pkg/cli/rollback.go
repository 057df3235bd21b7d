package cli

import (
	"flag"
	"fmt"
	"strconv"
)

func newRollbackCommand(app *App) *Command {
	cmd := &Command{
		Name:        "rollback",
		Description: "Switch the profile back to a prior generation (default: the previous one)",
		Flags:       flag.NewFlagSet("rollback", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runRollback(app, cmd, args) }
	return cmd
}

func runRollback(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	rest := cmd.Flags.Args()

	current, _, err := app.Profile.CurrentGeneration()
	if err != nil {
		return fmt.Errorf("rollback: read current generation: %w", err)
	}

	target := current - 1
	if len(rest) > 0 {
		target, err = strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("rollback: invalid generation %q: %w", rest[0], err)
		}
	}
	if target < 1 {
		return fmt.Errorf("rollback: no generation before %d", current)
	}

	if err := app.Profile.SwitchTo(target); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Printf("rolled back from generation %d to %d\n", current, target)
	return nil
}
