package cli

import (
	"context"
	"flag"
	"fmt"
)

func newSearchCommand(app *App) *Command {
	cmd := &Command{
		Name:        "search",
		Description: "Search for candidate recipe repositories",
		Flags:       flag.NewFlagSet("search", flag.ExitOnError),
	}
	cmd.Run = func(args []string) error { return runSearch(app, cmd, args) }
	return cmd
}

func runSearch(app *App, cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	rest := cmd.Flags.Args()
	if len(rest) == 0 {
		return fmt.Errorf("search: a query is required")
	}
	if app.Searcher == nil {
		return fmt.Errorf("search: no searcher configured")
	}

	results, err := app.Searcher.Search(context.Background(), rest[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s/%s (%d stars) - %s\n", r.Owner, r.Repo, r.Stars, r.Description)
	}
	return nil
}
