package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS translations (
  id INTEGER PRIMARY KEY,
  cache_key TEXT NOT NULL UNIQUE,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  source_lang TEXT NOT NULL,
  target_lang TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT '',
  source_text TEXT NOT NULL,
  initial_translation TEXT NOT NULL,
  reflection TEXT NOT NULL,
  improved_translation TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translations_created_at ON translations(created_at);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: record how long a run took end to end
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('translations') WHERE name = 'duration_ms'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check duration_ms column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE translations ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add duration_ms column: %w", err)
		}
	}

	// Migration 2: history listing filters by language pair
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_translations_langs ON translations(source_lang, target_lang)`); err != nil {
		return fmt.Errorf("create idx_translations_langs: %w", err)
	}

	return nil
}
