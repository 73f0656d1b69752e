package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type recorder struct {
	calls []*model.Session
	err   error
}

func (r *recorder) SessionChanged(_ context.Context, s *model.Session) error {
	r.calls = append(r.calls, s)
	return r.err
}

func newTestStore(auth gateway.Auth, p Persister, validate bool) *Store {
	return NewStore(auth, p, Options{
		ValidateOnRestore: validate,
		Logger:            quietLogger(),
		Now:               func() time.Time { return testNow },
	})
}

func saveRecord(t *testing.T, p Persister, token string, user model.User) {
	t.Helper()
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, p.Save(context.Background(), Record{Token: token, User: raw}))
}

var alice = model.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: model.RoleUser}

func TestLoginPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	mock := &gateway.Mock{
		LoginFunc: func(_ context.Context, c model.Credentials) (*model.Session, error) {
			assert.Equal(t, "alice@example.com", c.Email)
			return &model.Session{Token: "tok-1", User: alice}, nil
		},
	}
	s := newTestStore(mock, mem, false)
	rec := &recorder{}
	s.Subscribe(rec)

	sess, err := s.Login(ctx, model.Credentials{Email: "  alice@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-1", s.Token())
	assert.False(t, s.IsAdmin())

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "u1", rec.calls[0].User.ID)

	stored, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored.Token)
	var u model.User
	require.NoError(t, json.Unmarshal(stored.User, &u))
	assert.Equal(t, alice, u)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	called := false
	mock := &gateway.Mock{
		LoginFunc: func(context.Context, model.Credentials) (*model.Session, error) {
			called = true
			return nil, nil
		},
	}
	s := newTestStore(mock, nil, false)

	_, err := s.Login(context.Background(), model.Credentials{Email: " ", Password: "pw"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, err = s.Login(context.Background(), model.Credentials{Email: "a@b.c"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.False(t, called)
	assert.NotEmpty(t, s.Err())
}

func TestLoginFailureKeepsPriorSession(t *testing.T) {
	ctx := context.Background()
	fail := false
	mock := &gateway.Mock{
		LoginFunc: func(context.Context, model.Credentials) (*model.Session, error) {
			if fail {
				return nil, model.NewUnauthorizedError("wrong password")
			}
			return &model.Session{Token: "tok-1", User: alice}, nil
		},
	}
	s := newTestStore(mock, nil, false)
	_, err := s.Login(ctx, model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	fail = true
	_, err = s.Login(ctx, model.Credentials{Email: "a@b.c", Password: "bad"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "wrong password", s.Err())
}

func TestListenerErrorDoesNotFailLogin(t *testing.T) {
	mock := &gateway.Mock{
		LoginFunc: func(context.Context, model.Credentials) (*model.Session, error) {
			return &model.Session{Token: "tok", User: alice}, nil
		},
	}
	s := newTestStore(mock, nil, false)
	s.Subscribe(&recorder{err: errors.New("cart refresh failed")})

	_, err := s.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		reg     model.Registration
		wantErr bool
	}{
		{name: "valid", reg: model.Registration{Username: "alice", Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"}},
		{name: "missing username", reg: model.Registration{Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"}, wantErr: true},
		{name: "missing email", reg: model.Registration{Username: "alice", Password: "pw", ConfirmPassword: "pw"}, wantErr: true},
		{name: "missing password", reg: model.Registration{Username: "alice", Email: "a@b.c"}, wantErr: true},
		{name: "mismatch", reg: model.Registration{Username: "alice", Email: "a@b.c", Password: "pw", ConfirmPassword: "px"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registered, loggedIn := 0, 0
			mock := &gateway.Mock{
				RegisterFunc: func(context.Context, model.Registration) error {
					registered++
					return nil
				},
				LoginFunc: func(_ context.Context, c model.Credentials) (*model.Session, error) {
					loggedIn++
					assert.Equal(t, "pw", c.Password)
					return &model.Session{Token: "tok", User: alice}, nil
				},
			}
			s := newTestStore(mock, nil, false)

			_, err := s.Register(context.Background(), tt.reg)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidRequest)
				assert.Zero(t, registered)
				assert.Zero(t, loggedIn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, registered)
			assert.Equal(t, 1, loggedIn)
			assert.True(t, s.Authenticated())
		})
	}
}

func TestRegisterBackendRejection(t *testing.T) {
	mock := &gateway.Mock{
		RegisterFunc: func(context.Context, model.Registration) error {
			return model.NewRejectedError("email already in use")
		},
	}
	s := newTestStore(mock, nil, false)
	_, err := s.Register(context.Background(), model.Registration{
		Username: "alice", Email: "a@b.c", Password: "pw", ConfirmPassword: "pw",
	})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.Equal(t, "email already in use", s.Err())
	assert.False(t, s.Authenticated())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	saveRecord(t, mem, "tok", alice)
	s := newTestStore(&gateway.Mock{}, mem, false)
	require.NoError(t, s.Restore(ctx))
	require.True(t, s.Authenticated())

	rec := &recorder{}
	s.Subscribe(rec)
	s.Logout(ctx)

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Current())
	require.Len(t, rec.calls, 1)
	assert.Nil(t, rec.calls[0])
	_, err := mem.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		user      json.RawMessage
		validate  error
		wantToken bool
	}{
		{name: "opaque token kept", token: "opaque", wantToken: true},
		{name: "unexpired jwt kept", token: "live", wantToken: true},
		{name: "expired jwt cleared", token: "expired"},
		{name: "corrupt user cleared", token: "opaque", user: json.RawMessage(`{not json`)},
		{name: "rejected by backend cleared", token: "opaque", validate: model.NewUnauthorizedError("expired")},
		{name: "backend down keeps session", token: "opaque", validate: model.NewUpstreamError("store API", errors.New("timeout")), wantToken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			token := tt.token
			switch token {
			case "live":
				token = signedToken(t, testNow.Add(time.Hour))
			case "expired":
				token = signedToken(t, testNow.Add(-time.Hour))
			}

			mem := NewMemoryStore()
			user := tt.user
			if user == nil {
				user, _ = json.Marshal(alice)
			}
			require.NoError(t, mem.Save(ctx, Record{Token: token, User: user}))

			validated := 0
			mock := &gateway.Mock{
				ValidateSessionFunc: func(_ context.Context, tok string) error {
					validated++
					assert.Equal(t, token, tok)
					return tt.validate
				},
			}
			s := newTestStore(mock, mem, true)
			rec := &recorder{}
			s.Subscribe(rec)

			require.NoError(t, s.Restore(ctx))
			require.Len(t, rec.calls, 1)

			_, loadErr := mem.Load(ctx)
			if tt.wantToken {
				assert.Equal(t, token, s.Token())
				assert.Equal(t, "alice", s.Current().User.Username)
				assert.NotNil(t, rec.calls[0])
				assert.NoError(t, loadErr)
				return
			}
			assert.False(t, s.Authenticated())
			assert.Nil(t, rec.calls[0])
			assert.ErrorIs(t, loadErr, ErrNoSession)
			if tt.token == "expired" || tt.user != nil {
				assert.Zero(t, validated, "no network for locally detectable dead sessions")
			}
		})
	}
}

func TestRestoreNothingStored(t *testing.T) {
	s := newTestStore(&gateway.Mock{}, NewMemoryStore(), true)
	rec := &recorder{}
	s.Subscribe(rec)
	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.Authenticated())
	assert.Empty(t, rec.calls)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	var gotEmail, gotToken, gotPassword string
	mock := &gateway.Mock{
		ForgotPasswordFunc: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
		ResetPasswordFunc: func(_ context.Context, token, password string) error {
			gotToken, gotPassword = token, password
			return nil
		},
	}
	s := newTestStore(mock, nil, false)

	assert.ErrorIs(t, s.ForgotPassword(ctx, ""), model.ErrInvalidRequest)
	require.NoError(t, s.ForgotPassword(ctx, " a@b.c "))
	assert.Equal(t, "a@b.c", gotEmail)

	assert.ErrorIs(t, s.ResetPassword(ctx, "", "pw", "pw"), model.ErrInvalidRequest)
	assert.ErrorIs(t, s.ResetPassword(ctx, "rt", "pw", "other"), model.ErrInvalidRequest)
	assert.Empty(t, gotToken)

	require.NoError(t, s.ResetPassword(ctx, "rt", "new-pw", "new-pw"))
	assert.Equal(t, "rt", gotToken)
	assert.Equal(t, "new-pw", gotPassword)
}

func TestIsAdmin(t *testing.T) {
	mock := &gateway.Mock{
		LoginFunc: func(context.Context, model.Credentials) (*model.Session, error) {
			return &model.Session{Token: "tok", User: model.User{ID: "a1", Role: "admin"}}, nil
		},
	}
	s := newTestStore(mock, nil, false)
	assert.False(t, s.IsAdmin())
	_, err := s.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
}

func TestTokenExpiry(t *testing.T) {
	exp := testNow.Add(30 * time.Minute)
	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())

	_, ok = tokenExpiry("not-a-jwt")
	assert.False(t, ok)
}
