package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/pygr-project/pygr/pkg/manifest"
)

func newApplyCommand(app *App) *Command {
	cmd := &Command{
		Name:        "apply",
		Description: "Reconcile the installed packages with the declarative manifest",
		Flags:       flag.NewFlagSet("apply", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runApply(app, cmd, args) }
	return cmd
}

func runApply(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	current, err := app.Coordinator.CurrentArtifactNames(ctx)
	if err != nil {
		return fmt.Errorf("apply: read current generation: %w", err)
	}

	plan, err := app.Manifest.Plan(current)
	if err != nil {
		return fmt.Errorf("apply: compute plan: %w", err)
	}

	if len(plan.ToInstall) == 0 && len(plan.ToRemove) == 0 {
		fmt.Println("nothing to do, manifest and profile already match")
		return nil
	}

	for _, e := range plan.ToInstall {
		if err := applyInstallEntry(ctx, app, e); err != nil {
			return err
		}
	}
	for _, e := range plan.ToRemove {
		if err := app.Coordinator.Uninstall(ctx, []string{e.Name}); err != nil {
			return fmt.Errorf("apply: uninstall %s: %w", e.Name, err)
		}
		fmt.Printf("removed %s (no longer declared)\n", e.Name)
	}
	return nil
}

func applyInstallEntry(ctx context.Context, app *App, e manifest.Entry) error {
	switch e.Kind {
	case manifest.KindRecipe:
		spec := e.Name
		if e.Version != "" {
			spec = e.Name + "==" + e.Version
		}
		if err := app.Coordinator.Install(ctx, []string{spec}); err != nil {
			return fmt.Errorf("apply: install %s: %w", spec, err)
		}
		fmt.Printf("installed %s\n", spec)
	case manifest.KindDistro:
		if app.Distro == nil {
			return fmt.Errorf("apply: %s declares a distro package but no distro bridge is configured", e.Raw)
		}
		if err := app.Distro.Install(ctx, e.PM, e.Name); err != nil {
			return fmt.Errorf("apply: distro install %s:%s: %w", e.PM, e.Name, err)
		}
		fmt.Printf("installed %s via %s\n", e.Name, e.PM)
	case manifest.KindRemote:
		if err := app.Coordinator.Install(ctx, []string{e.Repo}); err != nil {
			return fmt.Errorf("apply: install %s: %w", e.Repo, err)
		}
		fmt.Printf("installed %s\n", e.Repo)
	}
	return nil
}
