package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verdeck/verdeck/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{}) // in-memory sqlite
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsBadSessionTable(t *testing.T) {
	if _, err := Open(Options{SessionTable: "sessions; DROP TABLE versions"}); err == nil {
		t.Fatal("expected error for invalid session table name")
	}
	if _, err := Open(Options{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestVersionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Create
	v, err := s.CreateVersion(ctx, "v1.0.0", model.Meta{"release": "stable"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if v.ID == 0 {
		t.Fatal("expected non-zero ID after create")
	}
	if v.Active {
		t.Error("new versions must start inactive")
	}
	if v.Meta["release"] != "stable" {
		t.Errorf("got meta %v, want release=stable", v.Meta)
	}

	// Get
	got, err := s.GetVersion(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if got.Name != "v1.0.0" {
		t.Errorf("got name %q, want %q", got.Name, "v1.0.0")
	}

	// List
	list, err := s.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d versions, want 1", len(list))
	}

	// Delete
	if err := s.DeleteVersion(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}
	if _, err := s.GetVersion(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is not an error
	if err := s.DeleteVersion(ctx, v.ID); err != nil {
		t.Errorf("second DeleteVersion: %v", err)
	}
}

func TestCreateVersionRejectsBlankName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := s.CreateVersion(ctx, name, nil); !errors.Is(err, ErrEmptyName) {
			t.Errorf("CreateVersion(%q): got %v, want ErrEmptyName", name, err)
		}
	}
}

func TestCreateVersionNilMeta(t *testing.T) {
	s := newTestStore(t)

	v, err := s.CreateVersion(context.Background(), "bare", nil)
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if v.Meta == nil {
		t.Error("nil meta should persist as an empty object")
	}
	if len(v.Meta) != 0 {
		t.Errorf("got meta %v, want empty", v.Meta)
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.CreateVersion(ctx, fmt.Sprintf("v%d", i), nil); err != nil {
			t.Fatalf("CreateVersion: %v", err)
		}
	}

	list, err := s.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d versions, want 3", len(list))
	}
	// Equal timestamps fall back to id order, so newest-first holds either way.
	for i := 1; i < len(list); i++ {
		if list[i-1].ID < list[i].ID {
			t.Errorf("versions out of order: id %d before id %d", list[i-1].ID, list[i].ID)
		}
	}
}

func TestActivateVersionSingleActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateVersion(ctx, "a", nil)
	b, _ := s.CreateVersion(ctx, "b", nil)

	got, err := s.ActivateVersion(ctx, a.ID)
	if err != nil {
		t.Fatalf("ActivateVersion(a): %v", err)
	}
	if !got.Active {
		t.Error("activated version not marked active")
	}

	// Switching to b must deactivate a in the same transaction.
	if _, err := s.ActivateVersion(ctx, b.ID); err != nil {
		t.Fatalf("ActivateVersion(b): %v", err)
	}

	list, err := s.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	activeCount := 0
	for _, v := range list {
		if v.Active {
			activeCount++
			if v.ID != b.ID {
				t.Errorf("wrong version active: got id %d, want %d", v.ID, b.ID)
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("got %d active versions, want exactly 1", activeCount)
	}
}

func TestActivateVersionUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, _ := s.CreateVersion(ctx, "current", nil)
	if _, err := s.ActivateVersion(ctx, v.ID); err != nil {
		t.Fatalf("ActivateVersion: %v", err)
	}

	_, err := s.ActivateVersion(ctx, 99999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	// The failed activation must not have touched the active version.
	got, err := s.GetVersion(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if !got.Active {
		t.Error("previously active version was deactivated by a failed activation")
	}
}

func TestAdminCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if count != 0 {
		t.Errorf("got %d admins, want 0", count)
	}

	admin := &model.AdminUser{Username: "root", PasswordHash: "$2a$12$fakehash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == 0 {
		t.Fatal("expected non-zero ID after create")
	}

	got, err := s.GetAdminByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("got ID %d, want %d", got.ID, admin.ID)
	}

	if _, err := s.GetAdminByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	admins, err := s.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if len(admins) != 1 {
		t.Errorf("got %d admins, want 1", len(admins))
	}
}

func TestAdminUsernameUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, &model.AdminUser{Username: "dup", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if err := s.CreateAdmin(ctx, &model.AdminUser{Username: "dup", PasswordHash: "y"}); err == nil {
		t.Error("expected unique constraint violation for duplicate username")
	}
}

func TestAppendLogAndRecentLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := int64(7)
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		entry := &model.AuditEntry{
			UserID:     &userID,
			Action:     fmt.Sprintf("action_%d", i),
			ActionHash: fmt.Sprintf("hash_%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Meta:       model.Meta{"seq": i},
		}
		if err := s.AppendLog(ctx, entry); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
		if entry.ID == 0 {
			t.Fatal("expected non-zero ID after append")
		}
	}

	logs, err := s.RecentLogs(ctx, 3)
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("got %d entries, want 3 (limit)", len(logs))
	}
	if logs[0].Action != "action_4" {
		t.Errorf("got first action %q, want newest %q", logs[0].Action, "action_4")
	}
	if logs[0].UserID == nil || *logs[0].UserID != userID {
		t.Errorf("got user_id %v, want %d", logs[0].UserID, userID)
	}
}

func TestAppendLogAnonymous(t *testing.T) {
	s := newTestStore(t)

	entry := &model.AuditEntry{
		Action:     "failed_login",
		ActionHash: "abc",
		Meta:       model.Meta{"username": "ghost"},
	}
	if err := s.AppendLog(context.Background(), entry); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("zero CreatedAt should have been backfilled")
	}

	logs, err := s.RecentLogs(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d entries, want 1", len(logs))
	}
	if logs[0].UserID != nil {
		t.Errorf("anonymous entry should have nil user_id, got %v", *logs[0].UserID)
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	s := newTestStore(t)
	ss := s.Sessions()

	// Missing token
	if _, found, err := ss.Find("missing"); err != nil || found {
		t.Fatalf("Find(missing) = found=%v err=%v, want found=false err=nil", found, err)
	}

	// Commit + Find
	expiry := time.Now().Add(time.Hour)
	if err := ss.Commit("tok1", []byte("payload"), expiry); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, found, err := ss.Find("tok1")
	if err != nil || !found {
		t.Fatalf("Find(tok1) = found=%v err=%v, want found=true", found, err)
	}
	if string(data) != "payload" {
		t.Errorf("got data %q, want %q", data, "payload")
	}

	// Upsert overwrites
	if err := ss.Commit("tok1", []byte("updated"), expiry); err != nil {
		t.Fatalf("Commit (update): %v", err)
	}
	data, _, _ = ss.Find("tok1")
	if string(data) != "updated" {
		t.Errorf("got data %q after upsert, want %q", data, "updated")
	}

	// Expired tokens are invisible
	if err := ss.Commit("tok2", []byte("stale"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Commit (expired): %v", err)
	}
	if _, found, _ := ss.Find("tok2"); found {
		t.Error("expired session should not be found")
	}

	// Delete
	if err := ss.Delete("tok1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := ss.Find("tok1"); found {
		t.Error("deleted session should not be found")
	}
	if err := ss.Delete("tok1"); err != nil {
		t.Errorf("deleting absent token: %v", err)
	}
}

func TestSessionCustomTable(t *testing.T) {
	s, err := Open(Options{SessionTable: "admin_sessions"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ss := s.Sessions()
	if err := ss.Commit("tok", []byte("x"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, found, err := ss.Find("tok"); err != nil || !found {
		t.Fatalf("Find = found=%v err=%v, want found=true", found, err)
	}
}
