package catalog

import "database/sql"

// schemaVersion is the current schema version recorded in
// schema_migrations. Bump it and add a migrate step below whenever the
// table shapes change, following the migration-table convention of
// keeping old columns around rather than destructively altering them.
const schemaVersion = 1

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS store_artifacts (
	fingerprint  TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	version      TEXT NOT NULL,
	path         TEXT NOT NULL,
	origin_spec  TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_repos (
	name TEXT PRIMARY KEY,
	url  TEXT NOT NULL,
	kind TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS profile_generations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_name  TEXT NOT NULL,
	generation    INTEGER NOT NULL,
	packages_json TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	UNIQUE(profile_name, generation)
);
`

// migrate creates the schema on first use and records the applied version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(createTablesSQL); err != nil {
		return err
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, schemaVersion); err != nil {
			return err
		}
	}
	return nil
}
