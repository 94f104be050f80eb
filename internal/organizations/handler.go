package organizations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// VolunteerRequest is the body for POST /organizations/:orgId/volunteer.
type VolunteerRequest struct {
	Action string `json:"accion" binding:"required,oneof=suscribir desuscribir"`
}

// MemberStatusRequest is the body for PUT /admin/:orgId/members/:assignmentId/status.
type MemberStatusRequest struct {
	Active *bool `json:"esActivo" binding:"required"`
}

// MemberRoleRequest is the body for PUT /admin/:orgId/members/:assignmentId/role.
type MemberRoleRequest struct {
	RoleID int `json:"idNuevoRol" binding:"required,gt=0"`
}

// RegisterMember mounts the routes every authenticated user can reach.
func (h *Handler) RegisterMember(rg *gin.RouterGroup) {
	rg.GET("", h.ListMyOrganizations)
	rg.GET("/session", h.CurrentSession)
	rg.DELETE("/current", h.LeaveOrganization)
	rg.POST("/:orgId/select", h.SelectOrganization)
	rg.POST("/:orgId/volunteer", h.ManageVolunteer)
}

// RegisterAdmin mounts the admin routes; rg must already be behind RequireAdmin.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("", h.GetOrganization)
	rg.PUT("", h.UpdateOrganization)
	rg.GET("/members", h.ListMembers)
	rg.DELETE("/members/:assignmentId", h.RemoveMember)
	rg.PUT("/members/:assignmentId/status", h.SetMemberStatus)
	rg.PUT("/members/:assignmentId/role", h.ChangeMemberRole)
}

func sessionParts(c *gin.Context) (int, *Cache, bool) {
	sess := auth.Current(c)
	cache := FromContext(c)
	if sess == nil || cache == nil {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return 0, nil, false
	}
	userID, ok := sess.UserID()
	if !ok {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return 0, nil, false
	}
	return userID, cache, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidRequest), string(apperr.KindInvalidRequest))
		return 0, false
	}
	return id, true
}

func invalidForm(c *gin.Context) {
	response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
}

// ListMyOrganizations handles GET /organizations. Reloads the user's
// organizations into the admin session.
func (h *Handler) ListMyOrganizations(c *gin.Context) {
	userID, cache, ok := sessionParts(c)
	if !ok {
		return
	}
	if _, err := cache.LoadOrganizations(c.Request.Context(), userID); err != nil {
		h.logger.Warn("load organizations", zap.Int("user_id", userID), zap.Error(err))
		apperr.Write(c, err)
		return
	}
	response.OK(c, cache.Snapshot())
}

// CurrentSession handles GET /organizations/session.
func (h *Handler) CurrentSession(c *gin.Context) {
	_, cache, ok := sessionParts(c)
	if !ok {
		return
	}
	response.OK(c, cache.Snapshot())
}

// SelectOrganization handles POST /organizations/:orgId/select.
func (h *Handler) SelectOrganization(c *gin.Context) {
	_, cache, ok := sessionParts(c)
	if !ok {
		return
	}
	orgID, ok := intParam(c, "orgId")
	if !ok {
		return
	}
	if _, err := cache.SelectOrganization(c.Request.Context(), orgID); err != nil {
		apperr.Write(c, err)
		return
	}
	response.OK(c, cache.Snapshot())
}

// LeaveOrganization handles DELETE /organizations/current.
func (h *Handler) LeaveOrganization(c *gin.Context) {
	_, cache, ok := sessionParts(c)
	if !ok {
		return
	}
	cache.ClearCurrentOrganization(c.Request.Context())
	response.OK(c, cache.Snapshot())
}

// ManageVolunteer handles POST /organizations/:orgId/volunteer, then reloads
// the organization list so the new membership shows up.
func (h *Handler) ManageVolunteer(c *gin.Context) {
	userID, cache, ok := sessionParts(c)
	if !ok {
		return
	}
	orgID, ok := intParam(c, "orgId")
	if !ok {
		return
	}
	var req VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	msg, err := h.repo.ManageVolunteer(c.Request.Context(), userID, orgID, req.Action)
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	if _, err := cache.LoadOrganizations(c.Request.Context(), userID); err != nil {
		h.logger.Warn("reload organizations after volunteer change", zap.Int("user_id", userID), zap.Error(err))
	}
	response.OK(c, gin.H{"mensaje": msg.Message, "session": cache.Snapshot()})
}

// GetOrganization handles GET /admin/:orgId.
func (h *Handler) GetOrganization(c *gin.Context) {
	detail, err := h.repo.GetByID(c.Request.Context(), OrganizationID(c))
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, detail)
}

// UpdateOrganization handles PUT /admin/:orgId.
func (h *Handler) UpdateOrganization(c *gin.Context) {
	userID, _, ok := sessionParts(c)
	if !ok {
		return
	}
	var req models.OrganizationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	req.RequesterID = userID
	req.Organization.ID = OrganizationID(c)
	msg, err := h.repo.Update(c.Request.Context(), req)
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, msg)
}

// ListMembers handles GET /admin/:orgId/members.
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.repo.Members(c.Request.Context(), OrganizationID(c))
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, members)
}

// RemoveMember handles DELETE /admin/:orgId/members/:assignmentId.
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _, ok := sessionParts(c)
	if !ok {
		return
	}
	assignmentID, ok := intParam(c, "assignmentId")
	if !ok {
		return
	}
	msg, err := h.repo.RemoveMember(c.Request.Context(), userID, assignmentID)
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, msg)
}

// SetMemberStatus handles PUT /admin/:orgId/members/:assignmentId/status.
func (h *Handler) SetMemberStatus(c *gin.Context) {
	userID, _, ok := sessionParts(c)
	if !ok {
		return
	}
	assignmentID, ok := intParam(c, "assignmentId")
	if !ok {
		return
	}
	var req MemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	msg, err := h.repo.SetMemberActive(c.Request.Context(), userID, assignmentID, *req.Active)
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, msg)
}

// ChangeMemberRole handles PUT /admin/:orgId/members/:assignmentId/role.
func (h *Handler) ChangeMemberRole(c *gin.Context) {
	userID, _, ok := sessionParts(c)
	if !ok {
		return
	}
	assignmentID, ok := intParam(c, "assignmentId")
	if !ok {
		return
	}
	var req MemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	msg, err := h.repo.ChangeMemberRole(c.Request.Context(), userID, assignmentID, req.RoleID)
	if err != nil {
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, msg)
}
