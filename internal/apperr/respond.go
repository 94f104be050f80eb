package apperr

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/pkg/response"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// Write answers the request with err translated for the request language.
// Missing or expired sessions carry a redirect intent to the login view that
// preserves the requested URL.
func Write(c *gin.Context, err error) {
	p := i18n.FromContext(c)
	kind := KindOf(err)
	status := HTTPStatus(err)
	msg := Message(p, err)
	if kind == KindSessionExpired || kind == KindNoSession {
		response.Deny(c, status, msg, string(kind), LoginRedirect(c))
		return
	}
	response.Fail(c, status, msg, string(kind))
}

// LoginRedirect builds the redirect intent to the login view for this request.
func LoginRedirect(c *gin.Context) response.Redirect {
	return response.Redirect{To: LoginPath, ReturnURL: ReturnURL(c)}
}

// ReturnURL is the URL the browser asked for, taken from X-Return-Url when the
// front end forwards its own route, else the request URI.
func ReturnURL(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader("X-Return-Url")); SafeReturnURL(v) {
		return v
	}
	return c.Request.URL.RequestURI()
}

// SafeReturnURL reports whether v is a local absolute path, so it can be used
// as a post-login redirect without becoming an open redirect.
func SafeReturnURL(v string) bool {
	return strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") && !strings.Contains(v, "\\")
}
