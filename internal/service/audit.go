package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/store"
)

// Auditor records administrative actions as append-only, fingerprinted
// audit rows. Recording is best-effort: a failed insert is logged and
// never fails or rolls back the triggering request.
type Auditor struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAuditor creates an Auditor writing through the given store.
func NewAuditor(st *store.Store, logger *slog.Logger) *Auditor {
	return &Auditor{store: st, logger: logger}
}

// Record fingerprints and persists one administrative action. userID is
// nil for unauthenticated actions (failed logins). Returns the computed
// hash regardless of whether persistence succeeded.
func (a *Auditor) Record(ctx context.Context, userID *int64, action string, meta model.Meta) string {
	if meta == nil {
		meta = model.Meta{}
	}
	now := time.Now().UTC()
	hash := Fingerprint(userID, action, meta, now)

	entry := &model.AuditEntry{
		UserID:     userID,
		Action:     action,
		ActionHash: hash,
		CreatedAt:  now,
		Meta:       meta,
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		a.logger.Error("audit log append failed", "action", action, "error", err)
	}
	return hash
}

// Fingerprint computes the content hash of one audit entry:
// hex(sha256("<actor>|<action>|<meta JSON>|<unix millis>")), where actor
// is the decimal user id or "anon". The timestamp in the preimage makes
// otherwise identical actions hash differently; entries are not chained
// to prior log state.
func Fingerprint(userID *int64, action string, meta model.Meta, at time.Time) string {
	actor := "anon"
	if userID != nil {
		actor = strconv.FormatInt(*userID, 10)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	preimage := actor + "|" + action + "|" + string(metaJSON) + "|" +
		strconv.FormatInt(at.UnixMilli(), 10)
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}
