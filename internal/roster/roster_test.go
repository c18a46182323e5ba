package roster

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func setupRoster(t *testing.T) *Roster {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	r, err := New(db)
	if err != nil {
		t.Fatalf("new roster: %v", err)
	}
	return r
}

func TestAddUserIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	r := setupRoster(t)

	if err := r.AddUser(ctx, User{UserID: 10, ChainID: 1, FirstName: "Ana"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := r.AddUser(ctx, User{UserID: 10, ChainID: 1, FirstName: "Changed"}); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if err := r.AddUser(ctx, User{UserID: 11, ChainID: 1, Username: "beto"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := r.AddUser(ctx, User{UserID: 10, ChainID: 2, LastName: "Gómez"}); err != nil {
		t.Fatalf("add user other chat: %v", err)
	}

	users, err := r.Users(ctx, 1)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].DisplayName() != "Ana" {
		t.Errorf("duplicate should not overwrite, got %q", users[0].DisplayName())
	}
	if users[1].DisplayName() != "@beto" {
		t.Errorf("expected @beto, got %q", users[1].DisplayName())
	}

	other, _ := r.Users(ctx, 2)
	if len(other) != 1 || other[0].DisplayName() != "Gómez" {
		t.Errorf("unexpected users in chat 2: %+v", other)
	}
}

func TestDisplayNameFallback(t *testing.T) {
	if got := (User{UserID: 5}).DisplayName(); got != "user5" {
		t.Errorf("expected user5, got %q", got)
	}
}

func TestSwords(t *testing.T) {
	ctx := context.Background()
	r := setupRoster(t)

	for _, w := range []string{"Sol", "luna", "sol"} {
		if err := r.AddSword(ctx, 1, "Cielo", w); err != nil {
			t.Fatalf("add sword: %v", err)
		}
	}
	if err := r.AddSword(ctx, 1, "mar", "ola"); err != nil {
		t.Fatalf("add sword: %v", err)
	}

	got, err := r.Swords(ctx, 1, "cielo")
	if err != nil {
		t.Fatalf("swords: %v", err)
	}
	if len(got) != 2 || got[0] != "sol" || got[1] != "luna" {
		t.Errorf("unexpected swords: %v", got)
	}

	all, err := r.AllSwords(ctx, 1)
	if err != nil {
		t.Fatalf("all swords: %v", err)
	}
	if len(all) != 2 || len(all["mar"]) != 1 {
		t.Errorf("unexpected sets: %v", all)
	}

	none, _ := r.Swords(ctx, 2, "cielo")
	if len(none) != 0 {
		t.Errorf("chat 2 should have no swords, got %v", none)
	}
}
