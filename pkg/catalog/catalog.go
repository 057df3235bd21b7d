// Package catalog is the persistent metadata index for store artifacts,
// registered recipe repositories, and profile generations. It is backed by
// an embedded SQLite database and held open by a single connection for the
// lifetime of the process, honoring the single-writer concurrency model.
package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Artifact is one row of store_artifacts.
type Artifact struct {
	Fingerprint string
	Name        string
	Version     string
	Path        string
	OriginSpec  string
	CreatedAt   time.Time
}

// Repo is one row of recipe_repos.
type Repo struct {
	Name string
	URL  string
	Kind string
}

// Catalog is the Go handle onto the SQLite-backed metadata store.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if absent) the catalog database at path and applies
// the schema. Only one open connection is ever used: the core is a
// single-writer, single-process tool, so there is no pool to tune.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCatalogError, path, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrCatalogError, err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// DB exposes the underlying connection for health checks. No other
// caller should reach through it; every catalog operation belongs on a
// Catalog method.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// UpsertArtifact inserts or replaces a store_artifacts row.
func (c *Catalog) UpsertArtifact(a Artifact) error {
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := c.db.Exec(`
		INSERT INTO store_artifacts (fingerprint, name, version, path, origin_spec, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			name = excluded.name, version = excluded.version,
			path = excluded.path, origin_spec = excluded.origin_spec
	`, a.Fingerprint, a.Name, a.Version, a.Path, a.OriginSpec, created.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: upsert artifact %s: %v", ErrCatalogError, a.Fingerprint, err)
	}
	return nil
}

// GetArtifact returns the artifact for fingerprint, or (nil, nil) if no
// such row exists.
func (c *Catalog) GetArtifact(fingerprint string) (*Artifact, error) {
	row := c.db.QueryRow(`
		SELECT fingerprint, name, version, path, origin_spec, created_at
		FROM store_artifacts WHERE fingerprint = ?
	`, fingerprint)

	var a Artifact
	var created string
	if err := row.Scan(&a.Fingerprint, &a.Name, &a.Version, &a.Path, &a.OriginSpec, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get artifact %s: %v", ErrCatalogError, fingerprint, err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &a, nil
}

// ListArtifacts returns every store_artifacts row, ordered by fingerprint
// for deterministic iteration.
func (c *Catalog) ListArtifacts() ([]Artifact, error) {
	rows, err := c.db.Query(`
		SELECT fingerprint, name, version, path, origin_spec, created_at
		FROM store_artifacts ORDER BY fingerprint
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list artifacts: %v", ErrCatalogError, err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var created string
		if err := rows.Scan(&a.Fingerprint, &a.Name, &a.Version, &a.Path, &a.OriginSpec, &created); err != nil {
			return nil, fmt.Errorf("%w: scan artifact: %v", ErrCatalogError, err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertRepo inserts or replaces a recipe_repos row.
func (c *Catalog) UpsertRepo(r Repo) error {
	_, err := c.db.Exec(`
		INSERT INTO recipe_repos (name, url, kind) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET url = excluded.url, kind = excluded.kind
	`, r.Name, r.URL, r.Kind)
	if err != nil {
		return fmt.Errorf("%w: upsert repo %s: %v", ErrCatalogError, r.Name, err)
	}
	return nil
}

// GetRepo returns the repo registration for name, or (nil, nil) if absent.
func (c *Catalog) GetRepo(name string) (*Repo, error) {
	row := c.db.QueryRow(`SELECT name, url, kind FROM recipe_repos WHERE name = ?`, name)
	var r Repo
	if err := row.Scan(&r.Name, &r.URL, &r.Kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get repo %s: %v", ErrCatalogError, name, err)
	}
	return &r, nil
}

// ListRepos returns every registered recipe repository, ordered by name.
func (c *Catalog) ListRepos() ([]Repo, error) {
	rows, err := c.db.Query(`SELECT name, url, kind FROM recipe_repos ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list repos: %v", ErrCatalogError, err)
	}
	defer rows.Close()

	var out []Repo
	for rows.Next() {
		var r Repo
		if err := rows.Scan(&r.Name, &r.URL, &r.Kind); err != nil {
			return nil, fmt.Errorf("%w: scan repo: %v", ErrCatalogError, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertGeneration records a new profile generation one past the profile's
// current highest generation number, and returns that number.
func (c *Catalog) InsertGeneration(profileName string, fingerprints []string) (int, error) {
	currentGen, _, err := c.LatestGeneration(profileName)
	if err != nil {
		return 0, err
	}
	nextGen := currentGen + 1

	packagesJSON, err := json.Marshal(fingerprints)
	if err != nil {
		return 0, fmt.Errorf("%w: marshal packages: %v", ErrCatalogError, err)
	}

	_, err = c.db.Exec(`
		INSERT INTO profile_generations (profile_name, generation, packages_json, created_at)
		VALUES (?, ?, ?, ?)
	`, profileName, nextGen, string(packagesJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("%w: insert generation: %v", ErrCatalogError, err)
	}
	return nextGen, nil
}

// LatestGeneration returns the highest generation number recorded for
// profileName and its fingerprint list, or (0, nil, nil) if the profile
// has no generations yet.
func (c *Catalog) LatestGeneration(profileName string) (int, []string, error) {
	row := c.db.QueryRow(`
		SELECT generation, packages_json FROM profile_generations
		WHERE profile_name = ? ORDER BY generation DESC LIMIT 1
	`, profileName)

	var gen int
	var packagesJSON string
	if err := row.Scan(&gen, &packagesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, nil
		}
		return 0, nil, fmt.Errorf("%w: latest generation: %v", ErrCatalogError, err)
	}

	var fps []string
	if err := json.Unmarshal([]byte(packagesJSON), &fps); err != nil {
		return 0, nil, fmt.Errorf("%w: unmarshal packages: %v", ErrCatalogError, err)
	}
	return gen, fps, nil
}

// GetGeneration returns the fingerprint list recorded for a specific
// generation number of profileName.
func (c *Catalog) GetGeneration(profileName string, generation int) ([]string, error) {
	row := c.db.QueryRow(`
		SELECT packages_json FROM profile_generations
		WHERE profile_name = ? AND generation = ?
	`, profileName, generation)

	var packagesJSON string
	if err := row.Scan(&packagesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile %s generation %d", ErrUnknownGeneration, profileName, generation)
		}
		return nil, fmt.Errorf("%w: get generation: %v", ErrCatalogError, err)
	}

	var fps []string
	if err := json.Unmarshal([]byte(packagesJSON), &fps); err != nil {
		return nil, fmt.Errorf("%w: unmarshal packages: %v", ErrCatalogError, err)
	}
	return fps, nil
}
