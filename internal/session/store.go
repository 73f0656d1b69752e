// Package session holds the signed-in identity and its bearer token,
// persists it across restarts, and tells interested components when it
// changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

// Listener is told about every session transition. s is nil after logout.
type Listener interface {
	SessionChanged(ctx context.Context, s *model.Session) error
}

// Options configures a Store.
type Options struct {
	// ValidateOnRestore checks a restored token with the backend and drops
	// it if rejected. Without it a restored session is trusted as stored.
	ValidateOnRestore bool
	Logger            *slog.Logger
	Now               func() time.Time
}

// Store is the session store. It implements gateway.TokenSource.
type Store struct {
	auth      gateway.Auth
	persister Persister
	logger    *slog.Logger
	validate  bool
	now       func() time.Time

	mu        sync.RWMutex
	current   *model.Session
	lastErr   string
	listeners []Listener
}

// NewStore returns a Store with no session. Call Restore to load a
// persisted one.
func NewStore(auth gateway.Auth, p Persister, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if p == nil {
		p = NewMemoryStore()
	}
	return &Store{
		auth:      auth,
		persister: p,
		logger:    logger,
		validate:  opts.ValidateOnRestore,
		now:       now,
	}
}

// Subscribe registers l for session transitions.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Current returns a copy of the session, or nil when signed out.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.User.IsAdmin()
}

// Err returns the readable message of the last failed call, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) setErr(err error) error {
	s.mu.Lock()
	s.lastErr = model.ErrorMessage(err)
	s.mu.Unlock()
	return err
}

func (s *Store) clearErr() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Restore loads the persisted session. Corrupt records and expired tokens
// are cleared without a network call. With validation on, a token the
// backend rejects as unauthorized is cleared too; any other validation
// failure keeps the session, since the backend may just be unreachable.
func (s *Store) Restore(ctx context.Context) error {
	rec, err := s.persister.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		s.logger.Warn("could not read persisted session", slog.Any("error", err))
		return err
	}

	var user model.User
	if rec.Token == "" || json.Unmarshal(rec.User, &user) != nil {
		s.logger.Warn("discarding unreadable persisted session")
		s.discard(ctx)
		return nil
	}

	if exp, ok := tokenExpiry(rec.Token); ok && !exp.After(s.now()) {
		s.logger.Info("persisted session expired",
			slog.String("user_id", user.ID),
			slog.Time("expired_at", exp),
		)
		s.discard(ctx)
		return nil
	}

	if s.validate {
		if err := s.auth.ValidateSession(ctx, rec.Token); err != nil {
			if errors.Is(err, model.ErrUnauthorized) {
				s.logger.Info("persisted session rejected by backend", slog.String("user_id", user.ID))
				s.discard(ctx)
				return nil
			}
			s.logger.Warn("could not validate persisted session, keeping it",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}

	sess := &model.Session{Token: rec.Token, User: user}
	s.set(sess)
	s.logger.Debug("session restored", slog.String("user_id", user.ID))
	s.notify(ctx, sess)
	return nil
}

// Login signs in. On failure any existing session is left untouched.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	s.clearErr()
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" {
		return nil, s.setErr(model.NewValidationError("email", "required"))
	}
	if creds.Password == "" {
		return nil, s.setErr(model.NewValidationError("password", "required"))
	}

	sess, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.logger.Info("login failed", slog.String("email", creds.Email), slog.Any("error", err))
		return nil, s.setErr(err)
	}

	s.persist(ctx, sess)
	s.set(sess)
	s.logger.Info("signed in", slog.String("user_id", sess.User.ID), slog.String("role", sess.User.Role))
	s.notify(ctx, sess)

	cp := *sess
	return &cp, nil
}

// Register creates an account and then signs in with the same credentials.
func (s *Store) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	s.clearErr()
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	switch {
	case reg.Username == "":
		return nil, s.setErr(model.NewValidationError("username", "required"))
	case reg.Email == "":
		return nil, s.setErr(model.NewValidationError("email", "required"))
	case reg.Password == "":
		return nil, s.setErr(model.NewValidationError("password", "required"))
	case reg.Password != reg.ConfirmPassword:
		return nil, s.setErr(model.NewValidationError("password", "confirmation does not match"))
	}

	if err := s.auth.Register(ctx, reg); err != nil {
		return nil, s.setErr(err)
	}
	return s.Login(ctx, model.Credentials{Email: reg.Email, Password: reg.Password})
}

// Logout drops the session locally. It never fails; a persistence error is
// only logged.
func (s *Store) Logout(ctx context.Context) {
	s.clearErr()
	s.discard(ctx)
	s.logger.Info("signed out")
}

// ForgotPassword asks the backend to send a reset email.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	s.clearErr()
	email = strings.TrimSpace(email)
	if email == "" {
		return s.setErr(model.NewValidationError("email", "required"))
	}
	if err := s.auth.ForgotPassword(ctx, email); err != nil {
		return s.setErr(err)
	}
	return nil
}

// ResetPassword sets a new password with a reset token.
func (s *Store) ResetPassword(ctx context.Context, token, password, confirm string) error {
	s.clearErr()
	switch {
	case strings.TrimSpace(token) == "":
		return s.setErr(model.NewValidationError("token", "required"))
	case password == "":
		return s.setErr(model.NewValidationError("password", "required"))
	case password != confirm:
		return s.setErr(model.NewValidationError("password", "confirmation does not match"))
	}
	if err := s.auth.ResetPassword(ctx, token, password); err != nil {
		return s.setErr(err)
	}
	return nil
}

// Close releases the persister.
func (s *Store) Close() error {
	return s.persister.Close()
}

// discard clears persisted and in-memory state and notifies listeners.
func (s *Store) discard(ctx context.Context) {
	if err := s.persister.Clear(ctx); err != nil {
		s.logger.Warn("could not clear persisted session", slog.Any("error", err))
	}
	s.set(nil)
	s.notify(ctx, nil)
}

func (s *Store) persist(ctx context.Context, sess *model.Session) {
	user, err := json.Marshal(sess.User)
	if err != nil {
		s.logger.Warn("could not encode session user", slog.Any("error", err))
		return
	}
	if err := s.persister.Save(ctx, Record{Token: sess.Token, User: user}); err != nil {
		s.logger.Warn("could not persist session", slog.Any("error", err))
	}
}

func (s *Store) set(sess *model.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// notify calls every listener outside the lock. Listener failures are
// logged; they do not undo the transition.
func (s *Store) notify(ctx context.Context, sess *model.Session) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		if err := l.SessionChanged(ctx, sess); err != nil {
			s.logger.Warn("session listener failed", slog.Any("error", err))
		}
	}
}
