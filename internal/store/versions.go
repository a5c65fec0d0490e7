package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verdeck/verdeck/internal/model"
)

// ListVersions returns all versions, newest first. The id tiebreaker
// keeps the order stable when rows share a timestamp.
func (s *Store) ListVersions(ctx context.Context) ([]model.Version, error) {
	versions := []model.Version{}
	const q = `SELECT id, name, created_at, active, meta FROM versions
		ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &versions, q); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// GetVersion returns a single version by id, or ErrNotFound.
func (s *Store) GetVersion(ctx context.Context, id int64) (*model.Version, error) {
	var v model.Version
	q := s.rebind(`SELECT id, name, created_at, active, meta FROM versions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &v, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &v, nil
}

// CreateVersion inserts a new, inactive version and returns the stored
// row. A nil meta is persisted as an empty object.
func (s *Store) CreateVersion(ctx context.Context, name string, meta model.Meta) (*model.Version, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if meta == nil {
		meta = model.Meta{}
	}

	var v model.Version
	q := s.rebind(`INSERT INTO versions (name, created_at, active, meta)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, created_at, active, meta`)
	if err := s.db.GetContext(ctx, &v, q, name, time.Now().UTC(), false, meta); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return &v, nil
}

// DeleteVersion removes a version by id. Deleting an absent id is not
// an error; the operation is idempotent.
func (s *Store) DeleteVersion(ctx context.Context, id int64) error {
	q := s.rebind(`DELETE FROM versions WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return nil
}

// ActivateVersion deactivates every version and activates the one
// matching id, as a single transaction, so readers never observe two
// active versions and concurrent swaps serialize on the row locks.
// If id does not exist the transaction is rolled back and ErrNotFound
// is returned, leaving the previously active version untouched.
func (s *Store) ActivateVersion(ctx context.Context, id int64) (*model.Version, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin activation: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.GetContext(ctx, &exists, s.rebind(`SELECT COUNT(*) FROM versions WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE versions SET active = false WHERE active = true`); err != nil {
		return nil, fmt.Errorf("deactivate versions: %w", err)
	}

	var v model.Version
	q := s.rebind(`UPDATE versions SET active = true WHERE id = ?
		RETURNING id, name, created_at, active, meta`)
	if err := tx.GetContext(ctx, &v, q, id); err != nil {
		return nil, fmt.Errorf("activate version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit activation: %w", err)
	}
	return &v, nil
}
