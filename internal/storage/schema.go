package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	// Enable foreign key constraints before creating tables with references
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		// clients table: signing identities with their Ed25519 public keys
		`CREATE TABLE IF NOT EXISTS clients (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			public_key  TEXT NOT NULL,
			is_admin    INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// projects table: named containers for config entries
		`CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// configs table: versioned key/value entries, one key per project
		`CREATE TABLE IF NOT EXISTS configs (
			id          TEXT PRIMARY KEY,
			project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			key         TEXT NOT NULL,
			value       TEXT NOT NULL,
			version     INTEGER NOT NULL DEFAULT 1,
			updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, key)
		)`,

		// client_permissions table: (client, project) capability pairs
		`CREATE TABLE IF NOT EXISTS client_permissions (
			client_id   TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
			project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			can_read    INTEGER NOT NULL DEFAULT 1,
			can_write   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (client_id, project_id)
		)`,

		// used_nonces table: replay-prevention ledger. The composite primary
		// key is what makes nonce registration an atomic insert-or-fail.
		`CREATE TABLE IF NOT EXISTS used_nonces (
			client_id   TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
			nonce       TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			PRIMARY KEY (client_id, nonce)
		)`,

		// Index for eviction of expired nonces by age
		`CREATE INDEX IF NOT EXISTS idx_used_nonces_created ON used_nonces(created_at)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
