package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/recipe"
)

func TestRunApplyWithEmptyManifestAndProfileDoesNothing(t *testing.T) {
	app := testApp(t, nil)
	err := newApplyCommand(app).Run(nil)
	assert.NoError(t, err)
}

func TestRunApplyInstallsDeclaredRecipe(t *testing.T) {
	r := curlRecipe(t)
	app := testApp(t, map[string][]*recipe.Recipe{"curl": {r}})
	require.NoError(t, app.Manifest.AddEntry("recipe:curl"))

	err := newApplyCommand(app).Run(nil)
	require.NoError(t, err)

	names, err := app.Coordinator.CurrentArtifactNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "curl")
}

func TestRunApplyInstallsDeclaredRecipeWithPinnedVersion(t *testing.T) {
	r := curlRecipe(t)
	app := testApp(t, map[string][]*recipe.Recipe{"curl": {r}})
	require.NoError(t, app.Manifest.AddEntry("recipe:curl@1.0"))

	err := newApplyCommand(app).Run(nil)
	require.NoError(t, err)

	names, err := app.Coordinator.CurrentArtifactNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "curl")
}

func TestRunApplyRemovesUndeclaredArtifact(t *testing.T) {
	r := curlRecipe(t)
	app := testApp(t, map[string][]*recipe.Recipe{"curl": {r}})
	require.NoError(t, newInstallCommand(app).Run([]string{"curl"}))
	// install records the spec in the manifest; drop it so curl is undeclared.
	_, removed, err := app.Manifest.RemoveByName("curl")
	require.NoError(t, err)
	require.True(t, removed)

	err = newApplyCommand(app).Run(nil)
	require.NoError(t, err)

	names, err := app.Coordinator.CurrentArtifactNames(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, names, "curl")
}

func TestRunApplyDistroEntryWithoutBridgeConfiguredFails(t *testing.T) {
	app := testApp(t, nil)
	require.NoError(t, app.Manifest.AddEntry("distro:apt:vim"))

	err := newApplyCommand(app).Run(nil)
	assert.ErrorContains(t, err, "no distro bridge is configured")
}
