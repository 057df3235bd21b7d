package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/catalog"
	"github.com/pygr-project/pygr/pkg/recipe"
)

func testRecipe(t *testing.T) *recipe.Recipe {
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

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "pygr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestFingerprintDependencySetOrderIndependence(t *testing.T) {
	r := testRecipe(t)

	fp1, err := Fingerprint(r, "sourcehash", []string{"b", "a", "c"})
	require.NoError(t, err)
	fp2, err := Fingerprint(r, "sourcehash", []string{"c", "b", "a"})
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
}

func TestFingerprintChangesWithSourceHash(t *testing.T) {
	r := testRecipe(t)

	fp1, err := Fingerprint(r, "hash1", nil)
	require.NoError(t, err)
	fp2, err := Fingerprint(r, "hash2", nil)
	require.NoError(t, err)

	assert.NotEqual(t, fp1, fp2)
}

func TestAddIsIdempotentByFingerprint(t *testing.T) {
	root := t.TempDir()
	cat := testCatalog(t)
	s, err := New(root, cat)
	require.NoError(t, err)

	buildOutput := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(buildOutput, "bin"), []byte("x"), 0o644))

	r := testRecipe(t)
	path1, err := s.Add(r, "sourcehash", nil, buildOutput)
	require.NoError(t, err)

	path2, err := s.Add(r, "sourcehash", nil, buildOutput)
	require.NoError(t, err)

	assert.Equal(t, path1, path2)

	fp, err := Fingerprint(r, "sourcehash", nil)
	require.NoError(t, err)
	resolved, err := s.PathFor(fp)
	require.NoError(t, err)
	assert.Equal(t, path1, resolved)
}

func TestPathForUnknownFingerprintReturnsEmpty(t *testing.T) {
	cat := testCatalog(t)
	s, err := New(t.TempDir(), cat)
	require.NoError(t, err)

	path, err := s.PathFor("deadbeef")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestAddCopiesBuildOutputContentsIntoStore(t *testing.T) {
	root := t.TempDir()
	cat := testCatalog(t)
	s, err := New(root, cat)
	require.NoError(t, err)

	buildOutput := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(buildOutput, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildOutput, "bin", "tool"), []byte("#!/bin/sh\n"), 0o755))

	r := testRecipe(t)
	path, err := s.Add(r, "sourcehash", nil, buildOutput)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(path, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(content))
}
