package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/store"
)

func TestFingerprintDeterministic(t *testing.T) {
	userID := int64(42)
	at := time.UnixMilli(1700000000000).UTC()
	meta := model.Meta{"version_id": 3}

	h1 := Fingerprint(&userID, "activate_version", meta, at)
	h2 := Fingerprint(&userID, "activate_version", meta, at)
	if h1 != h2 {
		t.Errorf("same inputs produced different hashes: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("got hash length %d, want 64 hex chars", len(h1))
	}
}

func TestFingerprintPreimage(t *testing.T) {
	userID := int64(7)
	at := time.UnixMilli(1700000000000).UTC()

	got := Fingerprint(&userID, "login_success", model.Meta{"username": "root"}, at)

	sum := sha256.Sum256([]byte(`7|login_success|{"username":"root"}|1700000000000`))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFingerprintAnonymousActor(t *testing.T) {
	at := time.UnixMilli(1700000000000).UTC()

	got := Fingerprint(nil, "failed_login", model.Meta{"username": "ghost"}, at)

	sum := sha256.Sum256([]byte(`anon|failed_login|{"username":"ghost"}|1700000000000`))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFingerprintVariesByInput(t *testing.T) {
	userID := int64(1)
	at := time.Now().UTC()
	base := Fingerprint(&userID, "create_version", model.Meta{"name": "a"}, at)

	other := int64(2)
	cases := map[string]string{
		"different user":   Fingerprint(&other, "create_version", model.Meta{"name": "a"}, at),
		"different action": Fingerprint(&userID, "delete_version", model.Meta{"name": "a"}, at),
		"different meta":   Fingerprint(&userID, "create_version", model.Meta{"name": "b"}, at),
		"different time":   Fingerprint(&userID, "create_version", model.Meta{"name": "a"}, at.Add(time.Millisecond)),
	}
	for name, h := range cases {
		if h == base {
			t.Errorf("%s: hash did not change", name)
		}
	}
}

func TestAuditorRecordPersists(t *testing.T) {
	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	a := NewAuditor(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	userID := int64(5)
	hash := a.Record(ctx, &userID, "create_version", model.Meta{"version_id": 1})
	if hash == "" {
		t.Fatal("Record returned an empty hash")
	}

	logs, err := st.RecentLogs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d entries, want 1", len(logs))
	}
	entry := logs[0]
	if entry.Action != "create_version" {
		t.Errorf("got action %q, want create_version", entry.Action)
	}
	if entry.ActionHash != hash {
		t.Errorf("persisted hash %q differs from returned hash %q", entry.ActionHash, hash)
	}
	if entry.UserID == nil || *entry.UserID != userID {
		t.Errorf("got user_id %v, want %d", entry.UserID, userID)
	}
}
