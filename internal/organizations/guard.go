package organizations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/pkg/response"
)

const (
	contextCache = "admin_session"
	// ContextOrganizationID is the context key for the guarded organization id.
	ContextOrganizationID = "organization_id"
	// SelectionPath is the organization selection view guard denials lead to.
	SelectionPath = "/organizations"
)

// Reason explains why the admin guard denied access.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonNoSession   Reason = "no-session"
	ReasonNoAdmin     Reason = "no-admin"
	ReasonOrgMismatch Reason = "org-mismatch"
)

// Attach stores the cache on the gin context.
func Attach(c *gin.Context, cache *Cache) {
	c.Set(contextCache, cache)
}

// FromContext returns the cache attached by the session middleware, or nil.
func FromContext(c *gin.Context) *Cache {
	if v, ok := c.Get(contextCache); ok {
		if cache, ok := v.(*Cache); ok {
			return cache
		}
	}
	return nil
}

// Check applies the admin guard to a route naming routeOrgID ("" when the
// route names no organization).
func (c *Cache) Check(routeOrgID string) Reason {
	org, ok := c.CurrentOrganization()
	if !ok {
		return ReasonNoSession
	}
	if !c.IsAdmin() {
		return ReasonNoAdmin
	}
	if routeOrgID != "" {
		id, err := strconv.Atoi(routeOrgID)
		if err != nil || id != org.ID {
			return ReasonOrgMismatch
		}
	}
	return ReasonNone
}

func (r Reason) message() string {
	switch r {
	case ReasonNoAdmin:
		return i18n.MsgNotOrgAdmin
	case ReasonOrgMismatch:
		return i18n.MsgOrgMismatch
	}
	return i18n.MsgNoOrgSession
}

// RequireAdmin gates organization-scoped admin routes. param names the route
// parameter holding the organization id; empty when the route has none.
// Denials answer 403 with a redirect to the organization selection view.
func RequireAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		routeOrg := ""
		if param != "" {
			routeOrg = c.Param(param)
		}
		reason := ReasonNoSession
		cache := FromContext(c)
		if cache != nil {
			reason = cache.Check(routeOrg)
		}
		if reason != ReasonNone {
			redirect := response.Redirect{To: SelectionPath, Reason: string(reason)}
			if reason == ReasonNoSession {
				redirect.ReturnURL = apperr.ReturnURL(c)
			}
			response.Deny(c, http.StatusForbidden, i18n.FromContext(c).Sprintf(reason.message()), string(apperr.KindForbidden), redirect)
			return
		}
		org, _ := cache.CurrentOrganization()
		c.Set(ContextOrganizationID, org.ID)
		c.Next()
	}
}

// OrganizationID returns the id stored by RequireAdmin.
func OrganizationID(c *gin.Context) int {
	return c.GetInt(ContextOrganizationID)
}
