package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/recipe"
)

func TestRunUninstallRequiresAtLeastOneName(t *testing.T) {
	app := testApp(t, nil)
	cmd := newUninstallCommand(app)

	err := cmd.Run(nil)
	assert.ErrorContains(t, err, "at least one package name")
}

func TestRunUninstallWithNothingInstalledIsNotAnError(t *testing.T) {
	app := testApp(t, nil)
	cmd := newUninstallCommand(app)

	err := cmd.Run([]string{"curl"})
	assert.NoError(t, err)
}

func TestRunUninstallRemovesInstalledRecipe(t *testing.T) {
	r := curlRecipe(t)
	app := testApp(t, map[string][]*recipe.Recipe{"curl": {r}})

	require.NoError(t, newInstallCommand(app).Run([]string{"curl"}))

	err := newUninstallCommand(app).Run([]string{"curl"})
	require.NoError(t, err)

	names, err := app.Coordinator.CurrentArtifactNames(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, names, "curl")
}
