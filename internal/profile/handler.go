package profile

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/response"
)

// Source is what the handler reads from the backend.
type Source interface {
	Hours(ctx context.Context, userID int) (models.Hours, error)
	Profile(ctx context.Context, userID int) (*models.Profile, error)
}

// Handler serves the signed-in user's profile routes.
type Handler struct {
	src    Source
	logger *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(src Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{src: src, logger: logger}
}

// Register mounts the routes; rg must already be behind RequireAuth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.GetProfile)
	rg.GET("/hours", h.GetHours)
}

func userID(c *gin.Context) (int, bool) {
	sess := auth.Current(c)
	if sess == nil {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return 0, false
	}
	id, ok := sess.UserID()
	if !ok {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return 0, false
	}
	return id, true
}

// fail writes err, replacing the generic message of unclassified failures
// with key.
func (h *Handler) fail(c *gin.Context, err error, key string) {
	err = apperr.Wrap("", err)
	if apperr.KindOf(err) == apperr.KindUnknown {
		err = &apperr.Error{Kind: apperr.KindUnknown, Key: key, Err: err}
	}
	apperr.Write(c, err)
}

// GetHours handles GET /profile/hours.
func (h *Handler) GetHours(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	hours, err := h.src.Hours(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("load hours", zap.Int("user_id", id), zap.Error(err))
		h.fail(c, err, i18n.MsgLoadHoursFailed)
		return
	}
	response.OK(c, hours)
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	p, err := h.src.Profile(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("load profile", zap.Int("user_id", id), zap.Error(err))
		h.fail(c, err, i18n.MsgLoadProfileFailed)
		return
	}
	if p == nil {
		response.NotFound(c, i18n.FromContext(c).Sprintf(i18n.MsgNotFound))
		return
	}
	response.OK(c, p)
}
