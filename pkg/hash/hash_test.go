package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	v := map[string]any{"b": 2, "a": 1, "nested": map[string]any{"z": 1, "y": 2}}
	f1, err := Fingerprint(v)
	require.NoError(t, err)
	f2, err := Fingerprint(v)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
	assert.Len(t, f1, 64)
}

func TestFingerprintKeyReorderingInvariant(t *testing.T) {
	a := map[string]any{"x": 1, "y": 2}
	b := map[string]any{"y": 2, "x": 1}
	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	f1, err := Fingerprint(map[string]any{"v": 1})
	require.NoError(t, err)
	f2, err := Fingerprint(map[string]any{"v": 2})
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)
}

func TestTreeHashDeterministic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.txt"), []byte("c"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "ignored"), []byte("x"), 0o644))

	h1, err := TreeHash(dir)
	require.NoError(t, err)
	h2, err := TreeHash(dir)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(other, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(other, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "sub", "c.txt"), []byte("c"), 0o644))

	h3, err := TreeHash(other)
	require.NoError(t, err)
	assert.Equal(t, h1, h3, "identical content at identical relative paths hashes the same regardless of directory identity")
}

func TestTreeHashDiffersOnContentChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	h1, err := TreeHash(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a-changed"), 0o644))
	h2, err := TreeHash(dir)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
