package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/response"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	models.Credentials
	ReturnURL string `json:"returnUrl"`
}

// SessionResponse describes the session after login or on GET /auth/session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int    `json:"idUsuario,omitempty"`
	Redirect      string `json:"redirect,omitempty"`
}

// Handler handles account HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Register mounts the account routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/session", h.Session)
	rg.POST("/register", h.SignUp)
	rg.GET("/activate", h.Activate)
	rg.POST("/activation/resend", h.ResendActivation)
	rg.POST("/password/recovery", h.RequestRecovery)
	rg.POST("/password/reset", h.ResetPassword)
	rg.POST("/password/change", h.ChangePassword)
}

func invalidForm(c *gin.Context) {
	response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	sess := Current(c)
	if sess == nil {
		apperr.Write(c, apperr.E(apperr.KindUnknown, ""))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	s, err := sess.Login(c.Request.Context(), req.Credentials)
	if err != nil {
		// A rejected login is not an expired session: answer without a redirect.
		p := i18n.FromContext(c)
		response.Fail(c, apperr.HTTPStatus(err), apperr.Message(p, err), string(apperr.KindOf(err)))
		return
	}
	redirect := "/"
	if apperr.SafeReturnURL(req.ReturnURL) {
		redirect = req.ReturnURL
	}
	response.OK(c, SessionResponse{Authenticated: true, UserID: s.UserID, Redirect: redirect})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if sess := Current(c); sess != nil {
		sess.Logout(c.Request.Context())
	}
	response.NoContent(c)
}

// Session handles GET /auth/session.
func (h *Handler) Session(c *gin.Context) {
	sess := Current(c)
	if sess == nil || !sess.IsAuthenticated() {
		response.OK(c, SessionResponse{})
		return
	}
	id, _ := sess.UserID()
	response.OK(c, SessionResponse{Authenticated: true, UserID: id})
}

// SignUp handles POST /auth/register.
func (h *Handler) SignUp(c *gin.Context) {
	var req models.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	msg, err := h.repo.Register(c.Request.Context(), req)
	if err != nil {
		h.logger.Info("registration rejected", zap.Error(err))
		err = apperr.Wrap("", err)
		response.Fail(c, apperr.HTTPStatus(err), apperr.Message(i18n.FromContext(c), err), string(apperr.KindOf(err)))
		return
	}
	response.Created(c, msg)
}

// Activate handles GET /auth/activate?token=.
func (h *Handler) Activate(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		invalidForm(c)
		return
	}
	h.reply(c, func() (*models.APIMessage, error) { return h.repo.Activate(c.Request.Context(), token) })
}

// ResendActivation handles POST /auth/activation/resend.
func (h *Handler) ResendActivation(c *gin.Context) {
	var req models.UsernameInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	h.reply(c, func() (*models.APIMessage, error) { return h.repo.ResendActivation(c.Request.Context(), req) })
}

// RequestRecovery handles POST /auth/password/recovery.
func (h *Handler) RequestRecovery(c *gin.Context) {
	var req models.UsernameInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	h.reply(c, func() (*models.APIMessage, error) { return h.repo.RequestRecovery(c.Request.Context(), req) })
}

// ResetPassword handles POST /auth/password/reset.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req models.PasswordReset
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	h.reply(c, func() (*models.APIMessage, error) { return h.repo.ResetPassword(c.Request.Context(), req) })
}

// ChangePassword handles POST /auth/password/change.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req models.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidForm(c)
		return
	}
	h.reply(c, func() (*models.APIMessage, error) { return h.repo.ChangePassword(c.Request.Context(), req) })
}

func (h *Handler) reply(c *gin.Context, call func() (*models.APIMessage, error)) {
	msg, err := call()
	if err != nil {
		err = apperr.Wrap("", err)
		response.Fail(c, apperr.HTTPStatus(err), apperr.Message(i18n.FromContext(c), err), string(apperr.KindOf(err)))
		return
	}
	response.OK(c, msg)
}
