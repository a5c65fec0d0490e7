package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SessionStore adapts the gateway's session table to the scs session
// manager's Store interface. Session rows live in the same database as
// the rest of the admin state, so the table name stays configurable and
// one connection lifecycle covers everything.
type SessionStore struct {
	store *Store

	mu          sync.Mutex
	cleanupOn   bool
	stopCleanup chan struct{}
}

// Find returns the data for a session token, if present and unexpired.
func (ss *SessionStore) Find(token string) ([]byte, bool, error) {
	var data []byte
	q := ss.store.rebind(fmt.Sprintf(
		`SELECT data FROM %s WHERE token = ? AND expiry > ?`, ss.store.sessionTable))
	err := ss.store.db.GetContext(context.Background(), &data, q, token, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find session: %w", err)
	}
	return data, true, nil
}

// Commit upserts the session data for a token with the given expiry.
func (ss *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	q := ss.store.rebind(fmt.Sprintf(
		`INSERT INTO %s (token, data, expiry) VALUES (?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET data = excluded.data, expiry = excluded.expiry`,
		ss.store.sessionTable))
	if _, err := ss.store.db.ExecContext(context.Background(), q, token, b, expiry.UTC()); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Delete removes a session token. Deleting an absent token is a no-op.
func (ss *SessionStore) Delete(token string) error {
	q := ss.store.rebind(fmt.Sprintf(`DELETE FROM %s WHERE token = ?`, ss.store.sessionTable))
	if _, err := ss.store.db.ExecContext(context.Background(), q, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// StartCleanup deletes expired session rows every interval until
// StopCleanup is called. Expired sessions are already invisible to Find;
// this just keeps the table from growing without bound.
func (ss *SessionStore) StartCleanup(interval time.Duration) {
	ss.mu.Lock()
	if ss.cleanupOn {
		ss.mu.Unlock()
		return
	}
	ss.cleanupOn = true
	ss.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ss.deleteExpired()
			case <-ss.stopCleanup:
				return
			}
		}
	}()
}

// StopCleanup stops the background cleanup goroutine, if running.
func (ss *SessionStore) StopCleanup() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cleanupOn {
		close(ss.stopCleanup)
		ss.cleanupOn = false
	}
}

func (ss *SessionStore) deleteExpired() {
	q := ss.store.rebind(fmt.Sprintf(`DELETE FROM %s WHERE expiry <= ?`, ss.store.sessionTable))
	_, _ = ss.store.db.Exec(q, time.Now().UTC())
}
