package registrations

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
	"github.com/voluntariado/portal/internal/views"
	"github.com/voluntariado/portal/pkg/response"
)

// ViewID names the enrollment listing in the views registry.
const ViewID = "events"

// Backend is what the handler needs from the enrollment endpoints.
type Backend interface {
	Enroller
	Available(ctx context.Context, userID int) ([]models.Activity, error)
}

// EnrollmentResponse is the body returned by enroll and withdraw.
type EnrollmentResponse struct {
	ActivityID     int    `json:"idActividad"`
	SlotID         int    `json:"idHorarioActividad"`
	Applied        bool   `json:"aplicado"`
	Registered     bool   `json:"inscrito"`
	RemainingSeats int    `json:"cuposRestantes"`
	At             string `json:"fecha,omitempty"`
	Message        string `json:"mensaje,omitempty"`
}

// Handler serves the enrollment listing.
type Handler struct {
	api         Backend
	reconcilers *views.Registry[*Reconciler]
	logger      *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(api Backend, reconcilers *views.Registry[*Reconciler], logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, reconcilers: reconcilers, logger: logger}
}

// Register mounts the routes. Enrollment routes stay reachable without a
// session so the caller gets the enrollment-specific sign-in message.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/:activityId/slots/:slotId/registration", h.Enroll)
	rg.DELETE("/:activityId/slots/:slotId/registration", h.Withdraw)
	rg.DELETE("", h.CloseView)
}

func (h *Handler) open() *Reconciler {
	return NewReconciler(h.api, h.logger)
}

func (h *Handler) load(ctx context.Context, rec *Reconciler, userID int) error {
	list, err := h.api.Available(ctx, userID)
	if err != nil {
		return apperr.Wrap("", err)
	}
	rec.Load(list)
	return nil
}

// List handles GET /events. Every call reloads the listing from the backend.
func (h *Handler) List(c *gin.Context) {
	sess := auth.Current(c)
	if sess == nil {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return
	}
	userID, ok := sess.UserID()
	if !ok {
		apperr.Write(c, apperr.E(apperr.KindNoSession, ""))
		return
	}
	rec := h.reconcilers.Get(sess.ID(), ViewID, h.open)
	if err := h.load(c.Request.Context(), rec, userID); err != nil {
		h.logger.Warn("load available activities", zap.Int("user_id", userID), zap.Error(err))
		apperr.Write(c, err)
		return
	}
	response.OK(c, rec.Events())
}

// CloseView handles DELETE /events.
func (h *Handler) CloseView(c *gin.Context) {
	if sess := auth.Current(c); sess != nil {
		h.reconcilers.Close(sess.ID(), ViewID)
	}
	response.NoContent(c)
}

// Enroll handles POST /events/:activityId/slots/:slotId/registration.
func (h *Handler) Enroll(c *gin.Context) {
	h.submit(c, apperr.OpRegister)
}

// Withdraw handles DELETE /events/:activityId/slots/:slotId/registration.
func (h *Handler) Withdraw(c *gin.Context) {
	h.submit(c, apperr.OpUnregister)
}

func (h *Handler) submit(c *gin.Context, op string) {
	p := i18n.FromContext(c)
	activityID, err1 := strconv.Atoi(c.Param("activityId"))
	slotID, err2 := strconv.Atoi(c.Param("slotId"))
	if err1 != nil || err2 != nil || activityID <= 0 || slotID <= 0 {
		response.Fail(c, http.StatusBadRequest, p.Sprintf(i18n.MsgInvalidRequest), string(apperr.KindInvalidRequest))
		return
	}

	sess := auth.Current(c)
	if sess == nil {
		apperr.Write(c, &apperr.Error{Kind: apperr.KindNoSession, Op: op})
		return
	}
	userID, _ := sess.UserID()
	if userID <= 0 && sess.Expired() {
		apperr.Write(c, sess.Required(op))
		return
	}
	ctx := c.Request.Context()
	rec := h.reconcilers.Get(sess.ID(), ViewID, h.open)

	var orgID int
	if userID > 0 {
		a, found := rec.Activity(activityID)
		if !found {
			if err := h.load(ctx, rec, userID); err != nil {
				apperr.Write(c, apperr.Wrap(op, err))
				return
			}
			a, found = rec.Activity(activityID)
		}
		if !found || !hasSlot(a, slotID) {
			response.NotFound(c, p.Sprintf(i18n.MsgNotFound))
			return
		}
		orgID = organizationOf(a)
	}

	req := models.EnrollmentRequest{UserID: userID, OrganizationID: orgID, ActivityID: activityID, ScheduleID: slotID}
	call := rec.Register
	if op == apperr.OpUnregister {
		call = rec.Unregister
	}
	res, err := call(ctx, req)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			response.NotFound(c, p.Sprintf(i18n.MsgNotFound))
			return
		}
		h.logger.Info("enrollment failed",
			zap.String("op", op),
			zap.Int("user_id", userID),
			zap.Int("activity_id", activityID),
			zap.Int("slot_id", slotID),
			zap.Error(err),
		)
		apperr.Write(c, err)
		return
	}

	out := EnrollmentResponse{
		ActivityID:     res.Key.ActivityID,
		SlotID:         res.Key.SlotID,
		Applied:        res.Applied,
		Registered:     res.Registered,
		RemainingSeats: res.RemainingSeats,
		At:             res.At,
	}
	if res.Applied {
		key := i18n.MsgRegistered
		if op == apperr.OpUnregister {
			key = i18n.MsgUnregistered
		}
		out.Message = p.Sprintf(key, res.ActivityName, res.RemainingSeats)
	}
	response.OK(c, out)
}

func hasSlot(a models.Activity, slotID int) bool {
	for _, s := range a.Schedules {
		if s.ID == slotID {
			return true
		}
	}
	return false
}
