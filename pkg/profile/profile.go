// Package profile manages a user's rollback-capable generations: each
// generation is an immutable snapshot of store artifact fingerprints,
// exposed to the user as a stable bin/ directory of symlinked
// executables.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pygr-project/pygr/pkg/catalog"
)

// Profile manages one named profile's generations under root.
type Profile struct {
	name string
	root string
	cat  *catalog.Catalog
}

// New returns a Profile named name rooted at profilesRoot/name.
func New(name, profilesRoot string, cat *catalog.Catalog) *Profile {
	return &Profile{
		name: name,
		root: filepath.Join(profilesRoot, name),
		cat:  cat,
	}
}

func (p *Profile) genDir(n int) string  { return filepath.Join(p.root, fmt.Sprintf("gen-%d", n)) }
func (p *Profile) binDir() string       { return filepath.Join(p.root, "bin") }
func (p *Profile) currentLink() string  { return filepath.Join(filepath.Dir(p.root), p.name+"-current") }

// CurrentGeneration returns the latest generation number and its
// fingerprint set, or (0, nil, nil) if the profile has no generations yet.
func (p *Profile) CurrentGeneration() (int, []string, error) {
	return p.cat.LatestGeneration(p.name)
}

// AddGeneration records a new generation one past the current highest,
// writes its manifest, and switches the profile to it.
func (p *Profile) AddGeneration(fingerprints []string) (int, error) {
	gen, err := p.cat.InsertGeneration(p.name, fingerprints)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(p.genDir(gen), 0o755); err != nil {
		return 0, fmt.Errorf("create generation dir: %w", err)
	}

	manifestJSON, err := json.MarshalIndent(fingerprints, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal generation manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.genDir(gen), "manifest.json"), manifestJSON, 0o644); err != nil {
		return 0, fmt.Errorf("write generation manifest: %w", err)
	}

	if err := p.SwitchTo(gen); err != nil {
		return 0, err
	}
	return gen, nil
}

// SwitchTo activates generation n: it clears bin/ entirely, then for
// every fingerprint in that generation symlinks every file under the
// corresponding store artifact's bin/ directory into the profile's
// bin/, and finally repoints the {name}-current symlink. If two
// artifacts expose the same executable name, the last one processed —
// in Catalog row (fingerprint-sorted) order — wins.
func (p *Profile) SwitchTo(n int) error {
	fingerprints, err := p.cat.GetGeneration(p.name, n)
	if err != nil {
		return err
	}

	bin := p.binDir()
	if err := os.RemoveAll(bin); err != nil {
		return fmt.Errorf("clear bin dir: %w", err)
	}
	if err := os.MkdirAll(bin, 0o755); err != nil {
		return fmt.Errorf("recreate bin dir: %w", err)
	}

	sorted := append([]string{}, fingerprints...)
	sort.Strings(sorted)

	for _, fp := range sorted {
		artifact, err := p.cat.GetArtifact(fp)
		if err != nil {
			return err
		}
		if artifact == nil {
			continue
		}

		artifactBin := filepath.Join(artifact.Path, "bin")
		entries, err := os.ReadDir(artifactBin)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read artifact bin dir %s: %w", artifactBin, err)
		}

		for _, entry := range entries {
			linkPath := filepath.Join(bin, entry.Name())
			os.Remove(linkPath)
			if err := os.Symlink(filepath.Join(artifactBin, entry.Name()), linkPath); err != nil {
				return fmt.Errorf("symlink %s: %w", linkPath, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(p.currentLink()), 0o755); err != nil {
		return fmt.Errorf("create profiles root: %w", err)
	}
	os.Remove(p.currentLink())
	if err := os.Symlink(p.genDir(n), p.currentLink()); err != nil {
		return fmt.Errorf("update current symlink: %w", err)
	}

	return nil
}

// BinDir returns the profile's symlink-fan-out directory.
func (p *Profile) BinDir() string { return p.binDir() }
