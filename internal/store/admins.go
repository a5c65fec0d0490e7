package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verdeck/verdeck/internal/model"
)

// CreateAdmin inserts a new admin account. The ID and CreatedAt fields
// on admin are populated after a successful insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.AdminUser) error {
	admin.CreatedAt = time.Now().UTC()

	q := s.rebind(`INSERT INTO admin_users (username, password_hash, created_at)
		VALUES (?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &admin.ID, q, admin.Username, admin.PasswordHash, admin.CreatedAt); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns an admin account by its unique username,
// or ErrNotFound.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var admin model.AdminUser
	q := s.rebind(`SELECT id, username, password_hash, created_at FROM admin_users WHERE username = ?`)
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// CountAdmins returns the number of admin accounts. Used by the
// first-run bootstrap check.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// ListAdmins returns all admin accounts ordered by username.
func (s *Store) ListAdmins(ctx context.Context) ([]model.AdminUser, error) {
	admins := []model.AdminUser{}
	const q = `SELECT id, username, password_hash, created_at FROM admin_users ORDER BY username`
	if err := s.db.SelectContext(ctx, &admins, q); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
