package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// identRe limits the configurable session table name to a plain SQL
// identifier, since it has to be interpolated into DDL and queries.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures the persistence gateway.
type Options struct {
	// Driver selects the backing store: "sqlite" (default) or "postgres".
	Driver string
	// DSN is the connection string. For sqlite an empty DSN opens an
	// in-memory database; a plain path opens (and creates) a file.
	DSN string
	// SessionTable is the name of the server-side session table.
	// Defaults to "sessions".
	SessionTable string
}

// Store is the persistence gateway for versions, admin users, audit
// logs, and sessions. It is constructed explicitly at process start and
// closed at shutdown; nothing else in the codebase opens connections.
type Store struct {
	db           *sqlx.DB
	driver       string
	sessionTable string
	sessions     *SessionStore
}

// Open connects to the configured store and runs the idempotent schema
// migrations. Safe to call on every boot.
func Open(opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "sqlite"
	}

	table := opts.SessionTable
	if table == "" {
		table = "sessions"
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid session table name %q", table)
	}

	var db *sqlx.DB
	var err error
	switch driver {
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = ":memory:?_journal_mode=WAL"
		} else {
			if dir := filepath.Dir(dsn); dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create data dir: %w", err)
				}
			}
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case "postgres":
		db, err = sqlx.Connect("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	s := &Store{db: db, driver: driver, sessionTable: table}
	s.sessions = &SessionStore{store: s, stopCleanup: make(chan struct{})}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.sessions.StopCleanup()
	return s.db.Close()
}

// Ping verifies store connectivity. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Sessions returns the scs-compatible session store backed by the
// configured session table.
func (s *Store) Sessions() *SessionStore {
	return s.sessions
}

// rebind rewrites ?-style bindvars into the dialect the open driver
// expects ($1 for postgres, unchanged for sqlite).
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
