package store

import (
	"context"
	"fmt"
	"time"

	"github.com/verdeck/verdeck/internal/model"
)

// AppendLog inserts one audit row. The caller supplies CreatedAt so the
// persisted timestamp is the same instant that went into the action
// fingerprint; a zero value falls back to now. Rows are never updated
// or deleted.
func (s *Store) AppendLog(ctx context.Context, entry *model.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Meta == nil {
		entry.Meta = model.Meta{}
	}

	q := s.rebind(`INSERT INTO admin_logs (user_id, action, action_hash, created_at, meta)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &entry.ID, q,
		entry.UserID, entry.Action, entry.ActionHash, entry.CreatedAt, entry.Meta); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// RecentLogs returns at most limit audit entries, newest first.
func (s *Store) RecentLogs(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	entries := []model.AuditEntry{}
	q := s.rebind(`SELECT id, user_id, action, action_hash, created_at, meta FROM admin_logs
		ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}
