package store

import "github.com/pkg/errors"

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Slides table - one row per uploaded slide image
		`CREATE TABLE IF NOT EXISTS slides (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			image TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - deck-level key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_slides_position ON slides(position)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return errors.Wrapf(err, "migration %d", i)
		}
	}

	return nil
}
