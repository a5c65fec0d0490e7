package model

import "time"

// AdminUser is an administrative account that can authenticate against
// the admin API. Passwords are stored as bcrypt hashes and never leave
// the server.
type AdminUser struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
