package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Persister.Load when nothing is stored.
var ErrNoSession = errors.New("no persisted session")

// Record is the persisted form of a session: the token and the user as the
// JSON it was saved with. The user is parsed on restore, not on load, so a
// corrupt record can be detected and cleared.
type Record struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Persister stores at most one session record.
type Persister interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
	Close() error
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// The backend verifies tokens; this only spares a round trip for one that is
// certainly dead. ok is false for opaque tokens or tokens without exp.
func tokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// MemoryStore keeps the record in process memory. Used by the HTTP server
// and tests.
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return Record{}, ErrNoSession
	}
	return *m.rec, nil
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
