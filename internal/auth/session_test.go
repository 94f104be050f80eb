package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/storage"
)

type fakeAuthn struct {
	msg   *models.APIMessage
	err   error
	calls int
}

func (f *fakeAuthn) Login(ctx context.Context, creds models.Credentials) (*models.APIMessage, error) {
	f.calls++
	return f.msg, f.err
}

func newStore(t *testing.T, authn Authenticator) (*SessionStore, storage.Store) {
	t.Helper()
	mem := storage.NewMemory()
	scoped := storage.Scope(mem, "s1", time.Hour)
	return NewSessionStore(context.Background(), "s1", scoped, authn, nil), scoped
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	t.Parallel()

	s, store := newStore(t, &fakeAuthn{msg: &models.APIMessage{Token: "tok", UserID: 42}})
	got, err := s.Login(context.Background(), models.Credentials{Username: "a@b.cr", Password: "x"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.UserID != 42 || !s.IsAuthenticated() || s.Token() != "tok" {
		t.Fatalf("session = %+v token=%q", got, s.Token())
	}

	fresh := NewSessionStore(context.Background(), "s1", store, nil, nil)
	if id, ok := fresh.UserID(); !ok || id != 42 || fresh.Token() != "tok" {
		t.Fatalf("hydrated user=%d token=%q", id, fresh.Token())
	}
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	authn := &fakeAuthn{msg: &models.APIMessage{Token: "first", UserID: 1}}
	s, store := newStore(t, authn)
	if _, err := s.Login(context.Background(), models.Credentials{}); err != nil {
		t.Fatalf("first login: %v", err)
	}

	authn.msg, authn.err = nil, &backend.StatusError{Status: http.StatusUnauthorized, Message: "Cuenta inactiva"}
	_, err := s.Login(context.Background(), models.Credentials{})
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Fatalf("kind = %s, want auth", apperr.KindOf(err))
	}
	if s.Token() != "first" {
		t.Fatalf("token = %q, want unchanged", s.Token())
	}
	var persisted string
	if err := storage.GetJSON(context.Background(), store, KeyToken, &persisted); err != nil || persisted != "first" {
		t.Fatalf("persisted token = %q, err = %v", persisted, err)
	}
}

func TestLoginWithoutTokenIsAuthError(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, &fakeAuthn{msg: &models.APIMessage{Message: "Usuario no activado"}})
	_, err := s.Login(context.Background(), models.Credentials{})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindAuth || appErr.Detail != "Usuario no activado" {
		t.Fatalf("err = %#v", err)
	}
	if s.IsAuthenticated() {
		t.Fatal("store must stay anonymous")
	}
}

func TestLogoutIsIdempotentAndRunsHooks(t *testing.T) {
	t.Parallel()

	s, store := newStore(t, &fakeAuthn{msg: &models.APIMessage{Token: "tok", UserID: 7}})
	if _, err := s.Login(context.Background(), models.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	calls := 0
	s.OnLogout(func(context.Context) { calls++ })

	s.Logout(context.Background())
	s.Logout(context.Background())

	if s.IsAuthenticated() {
		t.Fatal("still authenticated")
	}
	if _, ok := s.UserID(); ok {
		t.Fatal("user id still set")
	}
	if _, ok, _ := store.Get(context.Background(), KeyToken); ok {
		t.Fatal("persisted token not removed")
	}
	if calls != 2 {
		t.Fatalf("logout hooks ran %d times, want 2", calls)
	}
}

func TestLoginAsDifferentUserRunsUserChangeHooks(t *testing.T) {
	t.Parallel()

	authn := &fakeAuthn{msg: &models.APIMessage{Token: "a", UserID: 1}}
	s, _ := newStore(t, authn)
	changed := 0
	s.OnUserChange(func(context.Context) { changed++ })

	if _, err := s.Login(context.Background(), models.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := s.Login(context.Background(), models.Credentials{}); err != nil {
		t.Fatalf("same user again: %v", err)
	}
	if changed != 0 {
		t.Fatalf("hooks ran for the same user")
	}
	authn.msg = &models.APIMessage{Token: "b", UserID: 2}
	if _, err := s.Login(context.Background(), models.Credentials{}); err != nil {
		t.Fatalf("other user: %v", err)
	}
	if changed != 1 {
		t.Fatalf("user change hooks ran %d times, want 1", changed)
	}
}

func TestUnauthorizedTearsDown(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, &fakeAuthn{msg: &models.APIMessage{Token: "tok", UserID: 3}})
	_, _ = s.Login(context.Background(), models.Credentials{})
	if s.Expired() || apperr.KindOf(s.Required("")) != apperr.KindNoSession {
		t.Fatal("fresh session must not read as expired")
	}
	s.Unauthorized(context.Background())
	if s.IsAuthenticated() {
		t.Fatal("401 must clear the session")
	}
	if !s.Expired() || apperr.KindOf(s.Required("")) != apperr.KindSessionExpired {
		t.Fatal("401 must mark the session expired")
	}
	var missing *SessionStore
	if apperr.KindOf(missing.Required("")) != apperr.KindNoSession {
		t.Fatal("no session store must read as no_session")
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "9",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestDropExpiredJWT(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := signed(t, now.Add(-time.Minute))
	s, _ := newStore(t, &fakeAuthn{msg: &models.APIMessage{Token: expired, UserID: 9}})
	s.now = func() time.Time { return now }
	_, _ = s.Login(context.Background(), models.Credentials{})

	if !s.DropExpired(context.Background()) {
		t.Fatal("expected expired token to be dropped")
	}
	if s.IsAuthenticated() {
		t.Fatal("still authenticated")
	}
	if !s.Expired() {
		t.Fatal("dropped token must read as expired")
	}
}

func TestTokenExpiredIgnoresOpaqueTokens(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if TokenExpired("opaque-token", now) {
		t.Fatal("opaque token reported expired")
	}
	if TokenExpired(signed(t, now.Add(time.Hour)), now) {
		t.Fatal("valid token reported expired")
	}
	if _, err := TokenExpiry("opaque-token"); !errors.Is(err, ErrNotJWT) {
		t.Fatalf("err = %v", err)
	}
}
