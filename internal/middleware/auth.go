package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
)

// RequireAuth denies anonymous requests with a redirect to the login view
// carrying the requested URL. A session whose token expired on this request
// is answered as session_expired. Call after Session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := auth.Current(c)
		if sess == nil || !sess.IsAuthenticated() {
			apperr.Write(c, sess.Required(""))
			c.Abort()
			return
		}
		c.Next()
	}
}
