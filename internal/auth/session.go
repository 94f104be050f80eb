// Package auth owns the authenticated identity of a browsing session and the
// account flows (login, registration, activation, password recovery).
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/storage"
)

// Storage keys owned by the session store.
const (
	KeyToken  = "auth_token"
	KeyUserID = "user_id"
)

// Session is the authenticated identity.
type Session struct {
	Token  string `json:"-"`
	UserID int    `json:"idUsuario"`
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.APIMessage, error)
}

// SessionStore holds the token and user id of one browsing session. It is the
// only writer of auth_token and user_id.
type SessionStore struct {
	id     string
	store  storage.Store
	authn  Authenticator
	logger *zap.Logger
	now    func() time.Time

	mu           sync.RWMutex
	token        string
	userID       int
	expired      bool
	onLogout     []func(context.Context)
	onUserChange []func(context.Context)
}

// NewSessionStore creates the store for session id over store (already scoped
// to that session) and restores any persisted identity.
func NewSessionStore(ctx context.Context, id string, store storage.Store, authn Authenticator, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionStore{id: id, store: store, authn: authn, logger: logger, now: time.Now}
	s.hydrate(ctx)
	return s
}

func (s *SessionStore) hydrate(ctx context.Context) {
	var token string
	if err := storage.GetJSON(ctx, s.store, KeyToken, &token); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("restore auth token", zap.String("session_id", s.id), zap.Error(err))
	}
	var userID int
	if err := storage.GetJSON(ctx, s.store, KeyUserID, &userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("restore user id", zap.String("session_id", s.id), zap.Error(err))
	}
	s.token = strings.TrimSpace(token)
	s.userID = userID
}

// OnLogout registers fn to run on every logout, after the identity is cleared.
func (s *SessionStore) OnLogout(fn func(context.Context)) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// OnUserChange registers fn to run when a login replaces a different user.
func (s *SessionStore) OnUserChange(fn func(context.Context)) {
	s.mu.Lock()
	s.onUserChange = append(s.onUserChange, fn)
	s.mu.Unlock()
}

// ID returns the browsing session id.
func (s *SessionStore) ID() string { return s.id }

// Token returns the bearer token, or "".
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the authenticated user id.
func (s *SessionStore) UserID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != 0
}

// IsAuthenticated reports whether a non-empty token is held.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Current returns a copy of the identity.
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.token, UserID: s.userID}
}

// Login authenticates against the backend. On success the token and user id
// are persisted; on any failure the store is left as it was.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) (Session, error) {
	msg, err := s.authn.Login(ctx, creds)
	if err != nil {
		return Session{}, apperr.Wrap("", err)
	}
	if msg == nil || strings.TrimSpace(msg.Token) == "" {
		detail := ""
		if msg != nil {
			detail = msg.Message
		}
		return Session{}, &apperr.Error{Kind: apperr.KindAuth, Detail: detail}
	}
	next := Session{Token: strings.TrimSpace(msg.Token), UserID: msg.UserID}

	if err := storage.SetJSON(ctx, s.store, KeyToken, next.Token, 0); err != nil {
		return Session{}, apperr.Wrap("", err)
	}
	if next.UserID != 0 {
		if err := storage.SetJSON(ctx, s.store, KeyUserID, next.UserID, 0); err != nil {
			s.restoreToken(ctx)
			return Session{}, apperr.Wrap("", err)
		}
	}

	s.mu.Lock()
	prev := s.userID
	s.token = next.Token
	if next.UserID != 0 {
		s.userID = next.UserID
	}
	hooks := append([]func(context.Context){}, s.onUserChange...)
	s.mu.Unlock()

	if prev != 0 && next.UserID != 0 && prev != next.UserID {
		s.logger.Info("session user changed", zap.String("session_id", s.id), zap.Int("previous_user_id", prev), zap.Int("user_id", next.UserID))
		for _, fn := range hooks {
			fn(ctx)
		}
	}
	s.logger.Info("login", zap.String("session_id", s.id), zap.Int("user_id", next.UserID))
	return s.Current(), nil
}

// restoreToken puts the previous token back after a partial write.
func (s *SessionStore) restoreToken(ctx context.Context) {
	prev := s.Token()
	var err error
	if prev == "" {
		err = s.store.Delete(ctx, KeyToken)
	} else {
		err = storage.SetJSON(ctx, s.store, KeyToken, prev, 0)
	}
	if err != nil {
		s.logger.Warn("restore token after failed login", zap.String("session_id", s.id), zap.Error(err))
	}
}

// Logout clears the identity and its persisted copy, then runs the logout
// hooks. It always succeeds and may be called any number of times.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.userID = 0
	hooks := append([]func(context.Context){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyToken, KeyUserID); err != nil {
		s.logger.Warn("clear session storage", zap.String("session_id", s.id), zap.Error(err))
	}
	for _, fn := range hooks {
		fn(ctx)
	}
}

// Unauthorized tears the session down after the backend rejected its token.
func (s *SessionStore) Unauthorized(ctx context.Context) {
	s.logger.Info("backend rejected session token", zap.String("session_id", s.id))
	s.expire(ctx)
}

func (s *SessionStore) expire(ctx context.Context) {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
	s.Logout(ctx)
}

// Expired reports whether the identity was dropped during this request
// because its token was rejected or had expired.
func (s *SessionStore) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expired
}

// Required is the error for a request that needs the identity this session
// lacks: session_expired when it was just dropped, no_session otherwise.
func (s *SessionStore) Required(op string) error {
	if s != nil && s.Expired() {
		return &apperr.Error{Kind: apperr.KindSessionExpired, Op: op}
	}
	return &apperr.Error{Kind: apperr.KindNoSession, Op: op}
}

// DropExpired logs out when the held token is a JWT past its exp claim, the
// same way a 401 would. It reports whether it did.
func (s *SessionStore) DropExpired(ctx context.Context) bool {
	token := s.Token()
	if token == "" || !TokenExpired(token, s.now()) {
		return false
	}
	s.logger.Info("session token expired", zap.String("session_id", s.id))
	s.expire(ctx)
	return true
}

// Touch rewrites the persisted identity so its idle expiry starts over.
func (s *SessionStore) Touch(ctx context.Context) {
	cur := s.Current()
	if cur.Token == "" {
		return
	}
	if err := storage.SetJSON(ctx, s.store, KeyToken, cur.Token, 0); err != nil {
		s.logger.Debug("refresh session ttl", zap.String("session_id", s.id), zap.Error(err))
		return
	}
	if cur.UserID != 0 {
		_ = storage.SetJSON(ctx, s.store, KeyUserID, cur.UserID, 0)
	}
}
