package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/organizations"
	"github.com/voluntariado/portal/pkg/storage"
)

// ContextSessionID is the key for the browsing session id in gin context.
const ContextSessionID = "session_id"

// ViewDropper releases the per-view state of a session.
type ViewDropper interface {
	Drop(sessionID string) int
}

// SessionOptions configures the Session middleware.
type SessionOptions struct {
	Store      storage.Store
	Authn      auth.Authenticator
	Orgs       organizations.Lister
	Views      []ViewDropper
	CookieName string
	IdleTTL    time.Duration
	Secure     bool
	Logger     *zap.Logger
}

// Session resolves the browsing session from its cookie (issuing one when
// missing) and attaches the session store and admin session cache built over
// that session's storage. Outgoing backend calls made with the request context
// carry the session's bearer token.
func Session(opts SessionOptions) gin.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := sessionID(c, opts)
		ctx := c.Request.Context()
		scoped := storage.Scope(opts.Store, id, opts.IdleTTL)

		sess := auth.NewSessionStore(ctx, id, scoped, opts.Authn, logger)
		cache := organizations.NewCache(ctx, scoped, opts.Orgs, logger)
		teardown := func(ctx context.Context) {
			cache.ClearSession(ctx)
			for _, v := range opts.Views {
				v.Drop(id)
			}
		}
		sess.OnLogout(teardown)
		sess.OnUserChange(teardown)

		if !sess.DropExpired(ctx) {
			sess.Touch(ctx)
			cache.Touch(ctx)
		}

		c.Set(ContextSessionID, id)
		auth.Attach(c, sess)
		organizations.Attach(c, cache)
		c.Request = c.Request.WithContext(backend.WithCredentials(ctx, sess))
		c.Next()
	}
}

func sessionID(c *gin.Context, opts SessionOptions) string {
	if raw, err := c.Cookie(opts.CookieName); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     opts.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
