// Package calibstore persists the history of calibration documents
// loaded for each sensor, so a drifted or corrupted calibration can be
// rolled back to a known-good prior version. Schema is owned by
// golang-migrate, storage by modernc.org/sqlite (pure Go, no cgo),
// grounded on the reference db.go/migrate.go pair.
package calibstore

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sql.DB opened against a calibration-history database.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the sqlite database at path,
// applies the pragmas the decoder's write pattern needs and migrates
// the schema to the latest version.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("calibstore: open %q: %w", path, err)
	}

	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	diagf("opened calibration store %q", path)
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("calibstore: apply %q: %w", p, err)
		}
	}
	return nil
}
