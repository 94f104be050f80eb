package locations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/views"
	"github.com/voluntariado/portal/pkg/response"
)

// ChainInput is a saved location used to preset a form cascade.
type ChainInput struct {
	CountryID  int `json:"idPais" binding:"gte=0"`
	ProvinceID int `json:"idProvincia" binding:"gte=0"`
	CantonID   int `json:"idCanton" binding:"gte=0"`
	DistrictID int `json:"idDistrito" binding:"gte=0"`
}

// SelectRequest is the body for PUT /forms/:form/location/:level.
type SelectRequest struct {
	ID int `json:"id" binding:"gte=0"`
}

// FormView is the cascade of one form as sent to the browser.
type FormView struct {
	Form     string     `json:"form"`
	Country  LevelState `json:"country"`
	Province LevelState `json:"province"`
	Canton   LevelState `json:"canton"`
	District LevelState `json:"district"`
}

func formView(form string, s State) FormView {
	return FormView{
		Form:     form,
		Country:  s.Levels[Country],
		Province: s.Levels[Province],
		Canton:   s.Levels[Canton],
		District: s.Levels[District],
	}
}

// Handler serves reference lists and per-form location cascades.
type Handler struct {
	repo     *Repository
	cascades *views.Registry[*Cascade]
	logger   *zap.Logger
}

// NewHandler creates a locations handler.
func NewHandler(repo *Repository, cascades *views.Registry[*Cascade], logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, cascades: cascades, logger: logger}
}

// RegisterReference mounts the reference list routes.
func (h *Handler) RegisterReference(rg *gin.RouterGroup) {
	rg.GET("/countries", h.Countries)
	rg.GET("/provinces", h.Provinces)
	rg.GET("/cantons", h.Cantons)
	rg.GET("/districts", h.Districts)
	rg.GET("/postal-code", h.PostalCode)
	rg.GET("/correspondence-types", h.CorrespondenceTypes)
	rg.GET("/identifier-types", h.IdentifierTypes)
	rg.GET("/universities", h.Universities)
	rg.GET("/categories", h.Categories)
}

// RegisterForms mounts the form cascade routes.
func (h *Handler) RegisterForms(rg *gin.RouterGroup) {
	rg.POST("/:form/location", h.OpenCascade)
	rg.GET("/:form/location", h.GetCascade)
	rg.PUT("/:form/location/:level", h.SelectLevel)
	rg.POST("/:form/location/:level/retry", h.RetryLevel)
	rg.DELETE("/:form/location", h.CloseCascade)
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *Handler) list(c *gin.Context, what string, data interface{}, err error) {
	if err != nil {
		h.logger.Warn("load reference list", zap.String("list", what), zap.Error(err))
		apperr.Write(c, apperr.Wrap("", err))
		return
	}
	response.OK(c, data)
}

// Countries handles GET /reference/countries.
func (h *Handler) Countries(c *gin.Context) {
	list, err := h.repo.Countries(c.Request.Context())
	h.list(c, "countries", list, err)
}

// Provinces handles GET /reference/provinces?country=.
func (h *Handler) Provinces(c *gin.Context) {
	list, err := h.repo.Provinces(c.Request.Context(), queryInt(c, "country"))
	h.list(c, "provinces", list, err)
}

// Cantons handles GET /reference/cantons?country=&province=.
func (h *Handler) Cantons(c *gin.Context) {
	list, err := h.repo.Cantons(c.Request.Context(), queryInt(c, "country"), queryInt(c, "province"))
	h.list(c, "cantons", list, err)
}

// Districts handles GET /reference/districts?country=&province=&canton=.
func (h *Handler) Districts(c *gin.Context) {
	list, err := h.repo.Districts(c.Request.Context(), queryInt(c, "country"), queryInt(c, "province"), queryInt(c, "canton"))
	h.list(c, "districts", list, err)
}

// PostalCode handles GET /reference/postal-code?district=.
func (h *Handler) PostalCode(c *gin.Context) {
	code, err := h.repo.PostalCode(c.Request.Context(), queryInt(c, "district"))
	h.list(c, "postal-code", gin.H{"codigo": code}, err)
}

// CorrespondenceTypes handles GET /reference/correspondence-types.
func (h *Handler) CorrespondenceTypes(c *gin.Context) {
	list, err := h.repo.CorrespondenceTypes(c.Request.Context())
	h.list(c, "correspondence-types", list, err)
}

// IdentifierTypes handles GET /reference/identifier-types.
func (h *Handler) IdentifierTypes(c *gin.Context) {
	list, err := h.repo.IdentifierTypes(c.Request.Context())
	h.list(c, "identifier-types", list, err)
}

// Universities handles GET /reference/universities.
func (h *Handler) Universities(c *gin.Context) {
	list, err := h.repo.Universities(c.Request.Context())
	h.list(c, "universities", list, err)
}

// Categories handles GET /reference/categories.
func (h *Handler) Categories(c *gin.Context) {
	list, err := h.repo.Categories(c.Request.Context())
	h.list(c, "categories", list, err)
}

func currentSession(c *gin.Context) (*auth.SessionStore, bool) {
	sess := auth.Current(c)
	if sess == nil {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return nil, false
	}
	return sess, true
}

// settleView waits for cascade's fetches. When one of them ended the session,
// the caller gets the session-expired answer and its login redirect instead
// of the form.
func settleView(c *gin.Context, sess *auth.SessionStore, authed bool, cascade *Cascade) (State, bool) {
	state := cascade.Settle(c.Request.Context())
	if cascade.SessionExpired() || (authed && sess.Expired()) {
		apperr.Write(c, &apperr.Error{Kind: apperr.KindSessionExpired})
		return state, false
	}
	return state, true
}

func (h *Handler) open(c *gin.Context) *Cascade {
	return NewCascade(c.Request.Context(), h.repo, h.logger)
}

// OpenCascade handles POST /forms/:form/location. It starts a fresh cascade
// for the form, preset with the saved location in the body if any.
func (h *Handler) OpenCascade(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	authed := sess.IsAuthenticated()
	var in ChainInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
			return
		}
	}
	form := c.Param("form")
	cascade := h.open(c)
	h.cascades.Replace(sess.ID(), form, cascade)
	if in.CountryID > 0 {
		if _, err := cascade.Preset(Chain{in.CountryID, in.ProvinceID, in.CantonID, in.DistrictID}); err != nil {
			h.fail(c, err)
			return
		}
	}
	state, ok := settleView(c, sess, authed, cascade)
	if !ok {
		return
	}
	response.Created(c, formView(form, state))
}

// GetCascade handles GET /forms/:form/location, opening the cascade on first use.
func (h *Handler) GetCascade(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	authed := sess.IsAuthenticated()
	form := c.Param("form")
	cascade := h.cascades.Get(sess.ID(), form, func() *Cascade { return h.open(c) })
	cascade.Bind(c.Request.Context())
	state, ok := settleView(c, sess, authed, cascade)
	if !ok {
		return
	}
	response.OK(c, formView(form, state))
}

// SelectLevel handles PUT /forms/:form/location/:level.
func (h *Handler) SelectLevel(c *gin.Context) {
	h.change(c, func(cascade *Cascade, l Level) (State, error) {
		var req SelectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return State{}, errInvalidBody
		}
		return cascade.Select(l, req.ID)
	})
}

// RetryLevel handles POST /forms/:form/location/:level/retry.
func (h *Handler) RetryLevel(c *gin.Context) {
	h.change(c, func(cascade *Cascade, l Level) (State, error) {
		return cascade.Retry(l)
	})
}

var errInvalidBody = errors.New("locations: invalid body")

func (h *Handler) change(c *gin.Context, fn func(*Cascade, Level) (State, error)) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	authed := sess.IsAuthenticated()
	form := c.Param("form")
	level, ok := ParseLevel(c.Param("level"))
	if !ok {
		response.NotFound(c, i18n.FromContext(c).Sprintf(i18n.MsgNotFound))
		return
	}
	cascade, ok := h.cascades.Lookup(sess.ID(), form)
	if !ok {
		response.NotFound(c, i18n.FromContext(c).Sprintf(i18n.MsgNotFound))
		return
	}
	cascade.Bind(c.Request.Context())
	if _, err := fn(cascade, level); err != nil {
		h.fail(c, err)
		return
	}
	state, ok := settleView(c, sess, authed, cascade)
	if !ok {
		return
	}
	response.OK(c, formView(form, state))
}

func (h *Handler) fail(c *gin.Context, err error) {
	p := i18n.FromContext(c)
	switch {
	case errors.Is(err, errInvalidBody):
		response.Fail(c, http.StatusBadRequest, p.Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
	case errors.Is(err, ErrDisabled), errors.Is(err, ErrUnknownOption):
		response.Fail(c, http.StatusBadRequest, p.Sprintf(i18n.MsgUnknownOption), string(apperr.KindInvalidRequest))
	case errors.Is(err, ErrClosed):
		response.NotFound(c, p.Sprintf(i18n.MsgNotFound))
	default:
		apperr.Write(c, err)
	}
}

// CloseCascade handles DELETE /forms/:form/location.
func (h *Handler) CloseCascade(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	h.cascades.Close(sess.ID(), c.Param("form"))
	response.NoContent(c)
}
