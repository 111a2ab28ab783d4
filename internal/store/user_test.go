package store

import (
	"testing"
)

func TestUserCreateAndLookup(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.users.Create("alice@example.com", "alice", "$2a$10$hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Theme != "dark" {
		t.Errorf("theme = %q, want default dark", u.Theme)
	}
	if u.IsAdmin {
		t.Error("new user should not be admin")
	}

	byEmail, err := env.users.GetByEmail("alice@example.com")
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Errorf("GetByEmail = %v, %v", byEmail, err)
	}
	byName, err := env.users.GetByUsername("alice")
	if err != nil || byName == nil || byName.ID != u.ID {
		t.Errorf("GetByUsername = %v, %v", byName, err)
	}

	missing, err := env.users.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("lookup missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	if _, err := env.users.Create("alice@example.com", "alice2", "x"); err == nil {
		t.Error("duplicate email should fail")
	}
	if _, err := env.users.Create("other@example.com", "alice", "x"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestSearchByUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	env.createUser(t, "albert")
	env.createUser(t, "bob")

	users, err := env.users.SearchByUsername("al", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Username != "albert" || users[1].Username != "alice" {
		t.Errorf("order = %s, %s", users[0].Username, users[1].Username)
	}

	// Case-insensitive prefix.
	users, err = env.users.SearchByUsername("AL", 10)
	if err != nil || len(users) != 2 {
		t.Errorf("uppercase prefix: %d users, %v", len(users), err)
	}
}

func TestSearchExcludesSystemUser(t *testing.T) {
	env := newTestEnv(t)

	users, err := env.users.SearchByUsername("No", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, u := range users {
		if u.Username == SystemUsername {
			t.Error("system account must not appear in search")
		}
	}
}

func TestUpdateTheme(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "alice")

	if err := env.users.UpdateTheme(u.ID, "light"); err != nil {
		t.Fatalf("update theme: %v", err)
	}
	got, _ := env.users.GetByID(u.ID)
	if got.Theme != "light" {
		t.Errorf("theme = %q, want light", got.Theme)
	}
}

func TestSetAdmin(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "alice")

	if err := env.users.SetAdmin(u.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	got, _ := env.users.GetByID(u.ID)
	if !got.IsAdmin {
		t.Error("user should be admin")
	}
}

func TestEnsureSystemUserIdempotent(t *testing.T) {
	env := newTestEnv(t)

	again, err := env.users.EnsureSystemUser()
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if again.ID != env.system.ID {
		t.Errorf("second ensure created a new account: %d vs %d", again.ID, env.system.ID)
	}
	if again.Username != SystemUsername {
		t.Errorf("username = %q", again.Username)
	}
	if again.PasswordHash != "!" {
		t.Errorf("system account must carry an unusable hash, got %q", again.PasswordHash)
	}
}
