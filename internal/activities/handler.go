package activities

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/internal/organizations"
	"github.com/voluntariado/portal/pkg/response"
)

// ActivityRequest is the body for creating or updating an activity.
type ActivityRequest struct {
	CategoryID  int                  `json:"idCategoria" binding:"required,gt=0"`
	Name        string               `json:"nombre" binding:"required,max=150"`
	Description string               `json:"descripcion" binding:"max=1000"`
	StartsAt    string               `json:"fechaInicio" binding:"required"`
	EndsAt      string               `json:"fechaFin" binding:"required"`
	Hours       int                  `json:"horas" binding:"gte=0"`
	Seats       int                  `json:"cupos" binding:"required,gt=0"`
	Location    models.LocationInput `json:"ubicacion"`
}

// ScheduleRequest is the body for POST .../activities/:activityId/schedules.
type ScheduleRequest struct {
	Date        string `json:"fecha" binding:"required"`
	StartsAt    string `json:"horaInicio" binding:"required"`
	EndsAt      string `json:"horaFin" binding:"required"`
	Description string `json:"descripcion"`
	Status      string `json:"situacion" binding:"omitempty,oneof=I P C A F"`
	State       string `json:"estado" binding:"omitempty,oneof=A I"`
}

// Handler serves activity administration for the active organization.
type Handler struct {
	repo   *Repository
	places Places
	logger *zap.Logger
}

// NewHandler creates an activities handler.
func NewHandler(repo *Repository, places Places, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, places: places, logger: logger}
}

// Register mounts the routes; rg must already be behind RequireAdmin.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:activityId", h.Get)
	rg.PUT("/:activityId", h.Update)
	rg.DELETE("/:activityId", h.Delete)
	rg.GET("/:activityId/schedules", h.ListSchedules)
	rg.POST("/:activityId/schedules", h.CreateSchedule)
	rg.GET("/:activityId/schedules/:scheduleId", h.GetSchedule)
	rg.DELETE("/:activityId/schedules/:scheduleId", h.DeleteSchedule)
}

func requester(c *gin.Context) (int, bool) {
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

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidRequest), string(apperr.KindInvalidRequest))
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	p := i18n.FromContext(c)
	switch {
	case errors.Is(err, errBadDate), errors.Is(err, errDateOrder):
		response.Fail(c, http.StatusBadRequest, p.Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
	case errors.Is(err, errBadLocation):
		response.Fail(c, http.StatusBadRequest, p.Sprintf(i18n.MsgUnknownOption), string(apperr.KindInvalidRequest))
	case errors.Is(err, errWrongOrg), errors.Is(err, errNoSuchParent):
		response.NotFound(c, p.Sprintf(i18n.MsgNotFound))
	default:
		apperr.Write(c, apperr.Wrap("", err))
	}
}

// owned loads the activity and requires it to belong to the active organization.
func (h *Handler) owned(ctx context.Context, orgID, activityID int) (models.Activity, error) {
	a, err := h.repo.Get(ctx, activityID)
	if err != nil {
		return models.Activity{}, err
	}
	owner := a.OrganizationID
	if owner == 0 && a.Organization != nil {
		owner = a.Organization.ID
	}
	if owner != orgID {
		return models.Activity{}, errWrongOrg
	}
	return a, nil
}

// List handles GET /admin/:orgId/activities.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), organizations.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /admin/:orgId/activities/:activityId.
func (h *Handler) Get(c *gin.Context) {
	id, ok := intParam(c, "activityId")
	if !ok {
		return
	}
	a, err := h.owned(c.Request.Context(), organizations.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, a)
}

// bindActivity validates the body locally, before any backend call that
// would change data.
func (h *Handler) bindActivity(c *gin.Context) (ActivityRequest, bool) {
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
		return req, false
	}
	if err := checkSpan(req.StartsAt, req.EndsAt); err != nil {
		h.fail(c, err)
		return req, false
	}
	if err := checkLocation(c.Request.Context(), h.places, req.Location); err != nil {
		h.fail(c, err)
		return req, false
	}
	return req, true
}

func command(requesterID, orgID, activityID int, req ActivityRequest) models.ActivityCommand {
	loc := models.Address{
		CountryID:  req.Location.CountryID,
		ProvinceID: req.Location.ProvinceID,
		CantonID:   req.Location.CantonID,
		DistrictID: req.Location.DistrictID,
	}
	if req.Location.Address != nil {
		loc.Address = *req.Location.Address
	}
	if req.Location.PostalCode != nil {
		loc.PostalCode = *req.Location.PostalCode
	}
	if req.Location.Latitude != nil {
		loc.Latitude = *req.Location.Latitude
	}
	if req.Location.Longitude != nil {
		loc.Longitude = *req.Location.Longitude
	}
	return models.ActivityCommand{
		RequesterID: requesterID,
		Activity: models.ActivityInput{
			ID:             activityID,
			OrganizationID: orgID,
			CategoryID:     req.CategoryID,
			Name:           req.Name,
			Description:    req.Description,
			StartsAt:       req.StartsAt,
			EndsAt:         req.EndsAt,
			Hours:          req.Hours,
			Seats:          req.Seats,
			Location:       loc,
		},
	}
}

func (h *Handler) saveFailed(c *gin.Context, err error) {
	err = apperr.Wrap("", err)
	if apperr.KindOf(err) == apperr.KindUnknown {
		err = &apperr.Error{Kind: apperr.KindUnknown, Key: i18n.MsgSaveActivityFail, Err: err}
	}
	apperr.Write(c, err)
}

// Create handles POST /admin/:orgId/activities.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	req, ok := h.bindActivity(c)
	if !ok {
		return
	}
	orgID := organizations.OrganizationID(c)
	msg, err := h.repo.Create(c.Request.Context(), command(userID, orgID, 0, req))
	if err != nil {
		h.logger.Warn("create activity", zap.Int("organization_id", orgID), zap.Error(err))
		h.saveFailed(c, err)
		return
	}
	response.Created(c, msg)
}

// Update handles PUT /admin/:orgId/activities/:activityId.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "activityId")
	if !ok {
		return
	}
	req, ok := h.bindActivity(c)
	if !ok {
		return
	}
	orgID := organizations.OrganizationID(c)
	if _, err := h.owned(c.Request.Context(), orgID, id); err != nil {
		h.fail(c, err)
		return
	}
	msg, err := h.repo.Update(c.Request.Context(), command(userID, orgID, id, req))
	if err != nil {
		h.logger.Warn("update activity", zap.Int("activity_id", id), zap.Error(err))
		h.saveFailed(c, err)
		return
	}
	response.OK(c, msg)
}

// Delete handles DELETE /admin/:orgId/activities/:activityId.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "activityId")
	if !ok {
		return
	}
	if _, err := h.owned(c.Request.Context(), organizations.OrganizationID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	msg, err := h.repo.Delete(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, msg)
}

// ListSchedules handles GET /admin/:orgId/activities/:activityId/schedules.
func (h *Handler) ListSchedules(c *gin.Context) {
	id, ok := intParam(c, "activityId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.owned(ctx, organizations.OrganizationID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.repo.Schedules(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, list)
}

// CreateSchedule handles POST /admin/:orgId/activities/:activityId/schedules.
func (h *Handler) CreateSchedule(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	id, ok := intParam(c, "activityId")
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, i18n.FromContext(c).Sprintf(i18n.MsgInvalidForm), string(apperr.KindInvalidRequest))
		return
	}
	if err := checkSpan(req.StartsAt, req.EndsAt); err != nil {
		h.fail(c, err)
		return
	}
	if req.Status == "" {
		req.Status = models.ScheduleInitial
	}
	if req.State == "" {
		req.State = "A"
	}
	ctx := c.Request.Context()
	orgID := organizations.OrganizationID(c)
	if _, err := h.owned(ctx, orgID, id); err != nil {
		h.fail(c, err)
		return
	}
	msg, err := h.repo.CreateSchedule(ctx, models.ScheduleInput{
		OrganizationID: orgID,
		ActivityID:     id,
		UserID:         userID,
		Date:           req.Date,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Description:    req.Description,
		Status:         req.Status,
		State:          req.State,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, msg)
}

// schedule loads a schedule of an activity of the active organization.
func (h *Handler) schedule(c *gin.Context) (models.Schedule, bool) {
	activityID, ok := intParam(c, "activityId")
	if !ok {
		return models.Schedule{}, false
	}
	scheduleID, ok := intParam(c, "scheduleId")
	if !ok {
		return models.Schedule{}, false
	}
	ctx := c.Request.Context()
	if _, err := h.owned(ctx, organizations.OrganizationID(c), activityID); err != nil {
		h.fail(c, err)
		return models.Schedule{}, false
	}
	s, err := h.repo.Schedule(ctx, scheduleID)
	if err != nil {
		h.fail(c, err)
		return models.Schedule{}, false
	}
	if s.ActivityID != 0 && s.ActivityID != activityID {
		h.fail(c, errNoSuchParent)
		return models.Schedule{}, false
	}
	if s.ID == 0 {
		s.ID = scheduleID
	}
	return s, true
}

// GetSchedule handles GET /admin/:orgId/activities/:activityId/schedules/:scheduleId.
func (h *Handler) GetSchedule(c *gin.Context) {
	s, ok := h.schedule(c)
	if !ok {
		return
	}
	response.OK(c, s)
}

// DeleteSchedule handles DELETE /admin/:orgId/activities/:activityId/schedules/:scheduleId.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	s, ok := h.schedule(c)
	if !ok {
		return
	}
	msg, err := h.repo.DeleteSchedule(c.Request.Context(), userID, s.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, msg)
}
