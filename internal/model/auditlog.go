package model

import "time"

// AuditEntry is one append-only audit log row. ActionHash is a content
// fingerprint over (actor, action, meta, timestamp); entries are not
// chained to one another. UserID is nil for unauthenticated actions
// such as failed logins.
type AuditEntry struct {
	ID         int64     `json:"id" db:"id"`
	UserID     *int64    `json:"user_id" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	ActionHash string    `json:"action_hash" db:"action_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Meta       Meta      `json:"meta" db:"meta"`
}
