// Package binarycache fetches a pre-built store artifact by derivation
// fingerprint from an optional remote cache, so the builder can be
// skipped when someone else already built the same derivation.
package binarycache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Client fetches the archive for fingerprint and places it at
// destStorePath. It returns (true, nil) on a hit, (false, nil) on any
// miss (not found, network error, corrupt archive), and never returns a
// non-nil error for a miss — misses are not transaction-aborting.
type Client interface {
	Fetch(ctx context.Context, fingerprint, destStorePath string) (bool, error)
}

// extractAndPlace extracts the tar.gz bytes in r into destStorePath,
// staging into a temporary sibling directory first and renaming into
// place only once extraction fully succeeds, so destStorePath is never
// observed half-populated.
func extractAndPlace(r io.Reader, destStorePath string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	stageDir, err := os.MkdirTemp(filepath.Dir(destStorePath), ".pygr-cache-stage-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stageDir)

	tr := tar.NewReader(gz)
	topLevelDirs := make(map[string]bool)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		cleanName := filepath.Clean(header.Name)
		if strings.HasPrefix(cleanName, "..") {
			continue
		}
		if parts := strings.SplitN(cleanName, string(filepath.Separator), 2); len(parts) > 0 {
			topLevelDirs[parts[0]] = true
		}

		target := filepath.Join(stageDir, cleanName)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}

	src := stageDir
	if len(topLevelDirs) == 1 {
		for name := range topLevelDirs {
			src = filepath.Join(stageDir, name)
		}
	}

	return os.Rename(src, destStorePath)
}
