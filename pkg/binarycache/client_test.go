package binarycache

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/observability"
)

func buildArchive(t *testing.T, topDir string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		name = filepath.ToSlash(filepath.Join(topDir, name))
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestExtractAndPlaceSingleTopLevelDir(t *testing.T) {
	archive := buildArchive(t, "pkg-1.0", map[string]string{
		"bin/tool": "#!/bin/sh\necho hi\n",
	})

	storeRoot := t.TempDir()
	dest := filepath.Join(storeRoot, "fp-pkg-1.0")

	require.NoError(t, extractAndPlace(bytes.NewReader(archive), dest))

	content, err := os.ReadFile(filepath.Join(dest, "bin", "tool"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "echo hi")
}

func TestHTTPClientMissOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	log := observability.NewLogger(observability.InfoLevel, nil)
	c := NewHTTPClient(srv.URL, log)

	hit, err := c.Fetch(context.Background(), "deadbeef", filepath.Join(t.TempDir(), "fp-x"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestHTTPClientHitExtractsArchive(t *testing.T) {
	archive := buildArchive(t, "artifact", map[string]string{"bin/thing": "body"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	log := observability.NewLogger(observability.InfoLevel, nil)
	c := NewHTTPClient(srv.URL, log)

	storeRoot := t.TempDir()
	dest := filepath.Join(storeRoot, "fp-artifact")
	hit, err := c.Fetch(context.Background(), "deadbeef", dest)
	require.NoError(t, err)
	assert.True(t, hit)

	content, err := os.ReadFile(filepath.Join(dest, "bin", "thing"))
	require.NoError(t, err)
	assert.Equal(t, "body", string(content))
}
