package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/catalog"
	"github.com/pygr-project/pygr/pkg/manifest"
	"github.com/pygr-project/pygr/pkg/profile"
	"github.com/pygr-project/pygr/pkg/recipe"
	"github.com/pygr-project/pygr/pkg/resolver"
	"github.com/pygr-project/pygr/pkg/store"
	"github.com/pygr-project/pygr/pkg/transaction"
)

type fakeLookup struct {
	byName map[string][]*recipe.Recipe
}

func (f *fakeLookup) ByName(name string) []*recipe.Recipe { return f.byName[name] }

type fakeFetcher struct{ dir, hash string }

func (f *fakeFetcher) Fetch(ctx context.Context, repo, ref string) (string, string, error) {
	return f.dir, f.hash, nil
}

type fakeBuilder struct{ t *testing.T }

func (f *fakeBuilder) Build(ctx context.Context, r *recipe.Recipe, sourceDir string, depStorePaths map[string]string) (string, error) {
	root := f.t.TempDir()
	require.NoError(f.t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(f.t, os.WriteFile(filepath.Join(root, "bin", r.Name), []byte("#!/bin/sh\n"), 0o755))
	return root, nil
}

var _ resolver.RecipeLookup = (*fakeLookup)(nil)
var _ transaction.Fetcher = (*fakeFetcher)(nil)
var _ transaction.Builder = (*fakeBuilder)(nil)

func testApp(t *testing.T, recipes map[string][]*recipe.Recipe) *App {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "pygr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	st, err := store.New(t.TempDir(), cat)
	require.NoError(t, err)
	prof := profile.New("default", t.TempDir(), cat)
	mf := manifest.New(filepath.Join(t.TempDir(), "packages.conf"))

	coord := transaction.New(
		&fakeLookup{byName: recipes},
		&fakeFetcher{dir: t.TempDir(), hash: "sourcehash"},
		st, nil,
		&fakeBuilder{t: t},
		nil,
		prof, mf, nil, nil, nil, nil,
	)

	return &App{Coordinator: coord, Manifest: mf, Profile: prof}
}

func curlRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Parse([]byte(`
name: curl
version: "1.0"
source:
  type: github
  repo: curl/curl
  ref: main
`))
	require.NoError(t, err)
	return r
}
