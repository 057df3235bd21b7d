package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pygr-project/pygr/pkg/observability"
)

func newDoctorCommand(app *App) *Command {
	cmd := &Command{
		Name:        "doctor",
		Description: "Probe every configured external collaborator and report its health",
		Flags:       flag.NewFlagSet("doctor", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runDoctor(app, cmd, args) }
	return cmd
}

func runDoctor(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	if app.Health == nil {
		fmt.Println("no health checker configured")
		return nil
	}

	status := app.Health.Check(context.Background())
	fmt.Printf("overall: %s\n", status.Status)
	for _, dep := range status.Dependencies {
		marker := "ok"
		if dep.Status != observability.StatusHealthy {
			marker = dep.Status
		}
		fmt.Printf("  %-14s %-10s %s\n", dep.Name, marker, dep.Message)
	}

	if app.MetricsRegistry != nil {
		fmt.Println()
		if err := observability.Dump(app.MetricsRegistry, os.Stdout); err != nil {
			return fmt.Errorf("doctor: dump metrics: %w", err)
		}
	}
	return nil
}
