package auth

import "github.com/gin-gonic/gin"

const contextSession = "session_store"

// Attach stores the session on the gin context.
func Attach(c *gin.Context, s *SessionStore) {
	c.Set(contextSession, s)
}

// Current returns the session attached by the session middleware, or nil.
func Current(c *gin.Context) *SessionStore {
	if v, ok := c.Get(contextSession); ok {
		if s, ok := v.(*SessionStore); ok {
			return s
		}
	}
	return nil
}
