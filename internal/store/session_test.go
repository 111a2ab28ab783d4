package store

import (
	"testing"
	"time"

	"github.com/handfistface/ListPoint/internal/database"
)

func newSessionStores(t *testing.T) (*SessionStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db)
}

func TestSessionLifecycle(t *testing.T) {
	sessions, users := newSessionStores(t)
	u, err := users.Create("alice@example.com", "alice", "x")
	if err != nil {
		t.Fatal(err)
	}

	sess, err := sessions.Create(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Fatalf("got = %v", got)
	}

	if err := sessions.Delete(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("session should be gone")
	}
}

func TestSessionExpiry(t *testing.T) {
	sessions, users := newSessionStores(t)
	u, err := users.Create("alice@example.com", "alice", "x")
	if err != nil {
		t.Fatal(err)
	}

	expired, err := sessions.Create(u.ID, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	live, err := sessions.Create(u.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	got, err := sessions.GetByToken(expired.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expired session should not resolve")
	}

	n, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
	got, err = sessions.GetByToken(live.Token)
	if err != nil || got == nil {
		t.Errorf("live session should survive cleanup: %v, %v", got, err)
	}
}
