package store

import "fmt"

// migrate creates the four tables idempotently. Each driver gets its
// own DDL; the column names and semantics are identical.
func (s *Store) migrate() error {
	var migrations []string
	switch s.driver {
	case "postgres":
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS versions (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				active BOOLEAN NOT NULL DEFAULT false,
				meta JSONB NOT NULL DEFAULT '{}'
			)`,

			`CREATE TABLE IF NOT EXISTS admin_users (
				id BIGSERIAL PRIMARY KEY,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,

			`CREATE TABLE IF NOT EXISTS admin_logs (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT,
				action TEXT NOT NULL,
				action_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				meta JSONB NOT NULL DEFAULT '{}'
			)`,

			`CREATE INDEX IF NOT EXISTS idx_admin_logs_created_at ON admin_logs (created_at)`,

			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				token TEXT PRIMARY KEY,
				data BYTEA NOT NULL,
				expiry TIMESTAMPTZ NOT NULL
			)`, s.sessionTable),

			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_expiry ON %s (expiry)`,
				s.sessionTable, s.sessionTable),
		}
	default: // sqlite
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS versions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				active INTEGER NOT NULL DEFAULT 0,
				meta TEXT NOT NULL DEFAULT '{}'
			)`,

			`CREATE TABLE IF NOT EXISTS admin_users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE IF NOT EXISTS admin_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER,
				action TEXT NOT NULL,
				action_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				meta TEXT NOT NULL DEFAULT '{}'
			)`,

			`CREATE INDEX IF NOT EXISTS idx_admin_logs_created_at ON admin_logs (created_at)`,

			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				token TEXT PRIMARY KEY,
				data BLOB NOT NULL,
				expiry DATETIME NOT NULL
			)`, s.sessionTable),

			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_expiry ON %s (expiry)`,
				s.sessionTable, s.sessionTable),
		}
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
