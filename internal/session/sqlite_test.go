package session

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := OpenSQLite(path, "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	if _, err := s.Load(ctx); err != ErrNoSession {
		t.Fatalf("Load on empty db = %v, want ErrNoSession", err)
	}

	if err := s.Save(ctx, Record{Token: "tok-1", User: []byte(`{"id":"u1"}`)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, Record{Token: "tok-2", User: []byte(`{"id":"u1"}`)}); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen to prove the record survives the process.
	s, err = OpenSQLite(path, "default")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	rec, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Token != "tok-2" {
		t.Errorf("Token = %q, want %q", rec.Token, "tok-2")
	}
	if string(rec.User) != `{"id":"u1"}` {
		t.Errorf("User = %s", rec.User)
	}

	other, err := OpenSQLite(path, "work")
	if err != nil {
		t.Fatalf("open second profile: %v", err)
	}
	defer other.Close()
	if _, err := other.Load(ctx); err != ErrNoSession {
		t.Errorf("profiles are not isolated: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Load(ctx); err != ErrNoSession {
		t.Errorf("Load after Clear = %v, want ErrNoSession", err)
	}
}
