// Package store is the content-addressed directory of built artifacts.
// Every artifact lives at a derivation-fingerprint-keyed path and, once
// written, is never mutated again.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pygr-project/pygr/pkg/catalog"
	"github.com/pygr-project/pygr/pkg/hash"
	"github.com/pygr-project/pygr/pkg/recipe"
)

// Store places built artifacts at derivation-keyed paths under root and
// records them in cat.
type Store struct {
	root string
	cat  *catalog.Catalog
}

// New returns a Store rooted at root, creating root if absent.
func New(root string, cat *catalog.Catalog) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store root: %v", ErrStoreIO, err)
	}
	return &Store{root: root, cat: cat}, nil
}

// Fingerprint computes the derivation fingerprint for r given its source
// tree hash and the fingerprints of its already-resolved dependencies.
// Dependency fingerprints are sorted before hashing so that dependency
// set equality (not order) determines the fingerprint, per the identity
// invariant.
func Fingerprint(r *recipe.Recipe, sourceHash string, depFingerprints []string) (string, error) {
	sorted := append([]string{}, depFingerprints...)
	sort.Strings(sorted)

	return hash.Fingerprint(map[string]any{
		"recipe":       r.Document(),
		"source_hash":  sourceHash,
		"dependencies": sorted,
	})
}

// pathFor returns the store path an artifact named name/version at
// fingerprint fp would live at.
func (s *Store) pathFor(fp, name, version string) string {
	return filepath.Join(s.root, fmt.Sprintf("%s-%s-%s", fp, name, version))
}

// Add places buildOutput's contents at the derivation-keyed path for r,
// sourceHash, and depFingerprints, returning that path. If the path
// already exists, Add is a no-op and returns the existing path
// (idempotent by fingerprint) — buildOutput is not inspected in that
// case. Otherwise buildOutput is copied into place atomically (the copy is
// staged in a sibling directory, then renamed; buildOutput itself is left
// untouched) and recorded in the catalog.
func (s *Store) Add(r *recipe.Recipe, sourceHash string, depFingerprints []string, buildOutput string) (string, error) {
	fp, err := Fingerprint(r, sourceHash, depFingerprints)
	if err != nil {
		return "", fmt.Errorf("%w: compute fingerprint: %v", ErrStoreIO, err)
	}

	dest := s.pathFor(fp, r.Name, r.Version)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := stageAndRename(buildOutput, dest); err != nil {
		return "", fmt.Errorf("%w: place artifact %s: %v", ErrStoreIO, fp, err)
	}

	if err := s.cat.UpsertArtifact(catalog.Artifact{
		Fingerprint: fp,
		Name:        r.Name,
		Version:     r.Version,
		Path:        dest,
		OriginSpec:  fmt.Sprintf("recipe:%s@%s", r.Name, r.Version),
	}); err != nil {
		return "", err
	}

	return dest, nil
}

// DerivationPath returns the path a store artifact at fingerprint/name/
// version would occupy, without checking whether anything lives there
// yet. Callers placing an artifact by means other than Add (e.g. a
// binary-cache extraction) use this to know where to extract to, then
// call RecordExisting once the path is populated.
func (s *Store) DerivationPath(fingerprint, name, version string) string {
	return s.pathFor(fingerprint, name, version)
}

// RecordExisting records a catalog row for an artifact already placed at
// path by some means other than Add (e.g. a binary-cache hit extracted
// directly to DerivationPath's result).
func (s *Store) RecordExisting(fingerprint, name, version, path string) error {
	return s.cat.UpsertArtifact(catalog.Artifact{
		Fingerprint: fingerprint,
		Name:        name,
		Version:     version,
		Path:        path,
		OriginSpec:  fmt.Sprintf("recipe:%s@%s", name, version),
	})
}

// Artifact returns the full catalog record for fingerprint, or (nil, nil)
// if no artifact with that fingerprint has been recorded.
func (s *Store) Artifact(fingerprint string) (*catalog.Artifact, error) {
	return s.cat.GetArtifact(fingerprint)
}

// PathFor returns the store path recorded for fingerprint, or ("", nil)
// if no artifact with that fingerprint has been recorded.
func (s *Store) PathFor(fingerprint string) (string, error) {
	a, err := s.cat.GetArtifact(fingerprint)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", nil
	}
	return a.Path, nil
}

// stageAndRename copies src's tree into a temporary sibling of dest, then
// renames it into place, so dest is never observed half-populated.
func stageAndRename(src, dest string) error {
	stageDir, err := os.MkdirTemp(filepath.Dir(dest), ".pygr-store-stage-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stageDir)

	staged := filepath.Join(stageDir, "artifact")
	if err := copyTree(src, staged); err != nil {
		return err
	}

	return os.Rename(staged, dest)
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}

		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
