package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists one session per profile in a local SQLite file.
// The CLI uses it so a login survives between invocations.
type SQLiteStore struct {
	db      *sql.DB
	profile string
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path, profile string) (*SQLiteStore, error) {
	if profile == "" {
		profile = "default"
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the CLI's goroutines.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, profile: profile}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		profile   TEXT PRIMARY KEY,
		token     TEXT NOT NULL,
		user_json TEXT NOT NULL,
		saved_at  INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Record, error) {
	var rec Record
	var user string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json FROM sessions WHERE profile = ?`, s.profile,
	).Scan(&rec.Token, &user)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading session: %w", err)
	}
	rec.User = []byte(user)
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (profile, token, user_json, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			saved_at = excluded.saved_at`,
		s.profile, rec.Token, string(rec.User), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
