package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryDistro(t *testing.T) {
	e, err := ParseEntry("distro:apt:htop")
	require.NoError(t, err)
	assert.Equal(t, KindDistro, e.Kind)
	assert.Equal(t, "apt", e.PM)
	assert.Equal(t, "htop", e.DisplayName())
}

func TestParseEntryRecipeWithAndWithoutVersion(t *testing.T) {
	e, err := ParseEntry("recipe:curl@1.0")
	require.NoError(t, err)
	assert.Equal(t, KindRecipe, e.Kind)
	assert.Equal(t, "curl", e.DisplayName())
	assert.Equal(t, "1.0", e.Version)

	e2, err := ParseEntry("recipe:curl")
	require.NoError(t, err)
	assert.Empty(t, e2.Version)
}

func TestParseEntryRemote(t *testing.T) {
	e, err := ParseEntry("github:curl/curl@abc123")
	require.NoError(t, err)
	assert.Equal(t, KindRemote, e.Kind)
	assert.Equal(t, "github", e.Tag)
	assert.Equal(t, "curl", e.Owner)
	assert.Equal(t, "curl", e.Repo)
	assert.Equal(t, "abc123", e.Ref)
	assert.Equal(t, "curl", e.DisplayName())
}

func TestParseEntryInvalid(t *testing.T) {
	for _, bad := range []string{"", "distro:onlypm", "recipe:", "noop"} {
		_, err := ParseEntry(bad)
		assert.ErrorIs(t, err, ErrInvalidEntry, "input %q", bad)
	}
}

func TestAddEntryIsIdempotent(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))

	require.NoError(t, m.AddEntry("recipe:curl@1.0"))
	require.NoError(t, m.AddEntry("recipe:curl@1.0"))

	entries, err := m.ReadEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "curl", entries[0].Name)
}

func TestAddEntryRejectsInvalidSpec(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))
	err := m.AddEntry("not-a-valid-spec")
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestRemoveByNameRemovesFirstMatchAndPreservesOthers(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))
	require.NoError(t, m.AddEntry("recipe:curl@1.0"))
	require.NoError(t, m.AddEntry("recipe:wget@1.0"))

	spec, removed, err := m.RemoveByName("curl")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "recipe:curl@1.0", spec)

	entries, err := m.ReadEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wget", entries[0].Name)
}

func TestRemoveByNameNoMatchReturnsFalse(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))
	require.NoError(t, m.AddEntry("recipe:curl@1.0"))

	_, removed, err := m.RemoveByName("nonexistent")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWriteEntriesThenReadEntriesRoundTrips(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))
	entries := []Entry{
		{Raw: "recipe:curl@1.0", Kind: KindRecipe, Name: "curl", Version: "1.0"},
		{Raw: "distro:apt:htop", Kind: KindDistro, PM: "apt", Name: "htop"},
	}
	require.NoError(t, m.WriteEntries(entries, ""))

	got, err := m.ReadEntries()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "curl", got[0].Name)
	assert.Equal(t, "htop", got[1].Name)
}

func TestWriteEntriesValidatesRefreshSchedule(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))

	err := m.WriteEntries(nil, "not a cron expr")
	assert.ErrorIs(t, err, ErrInvalidRefreshSchedule)

	require.NoError(t, m.WriteEntries(nil, "0 * * * *"))
	schedule, err := m.RefreshSchedule()
	require.NoError(t, err)
	assert.Equal(t, "0 * * * *", schedule)
}

func TestPlanDiffsManifestAgainstCurrentGeneration(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "packages.conf"))
	require.NoError(t, m.AddEntry("recipe:curl@1.0"))
	require.NoError(t, m.AddEntry("recipe:wget@1.0"))

	plan, err := m.Plan([]string{"wget", "orphan"})
	require.NoError(t, err)

	require.Len(t, plan.ToInstall, 1)
	assert.Equal(t, "curl", plan.ToInstall[0].Name)

	require.Len(t, plan.ToRemove, 1)
	assert.Equal(t, "orphan", plan.ToRemove[0].Name)
}
