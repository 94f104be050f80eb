// Package activities is the organization administrator's view of activities
// and their schedules.
package activities

import (
	"context"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Repository proxies the activity administration endpoints.
type Repository struct {
	api *backend.Client
}

// NewRepository creates an activities repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

type orgRef struct {
	OrganizationID int `json:"idOrganizacion"`
}

type activityRef struct {
	ActivityID int `json:"idActividad"`
}

type byID struct {
	ID int `json:"id"`
}

type deleteActivity struct {
	RequesterID int `json:"idUsuarioSolicitante"`
	ActivityID  int `json:"idActividad"`
}

type deleteSchedule struct {
	RequesterID int `json:"idUsuarioSolicitante"`
	ScheduleID  int `json:"idHorarioActividad"`
}

// List returns the activities of an organization.
func (r *Repository) List(ctx context.Context, orgID int) ([]models.Activity, error) {
	var out []models.Activity
	if err := r.api.Post(ctx, "/Integracion/GetActividadesPorOrg", orgRef{OrganizationID: orgID}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Activity{}
	}
	return out, nil
}

// Get returns one activity.
func (r *Repository) Get(ctx context.Context, id int) (models.Activity, error) {
	var out models.Activity
	if err := r.api.Post(ctx, "/Integracion/GetActividadById", byID{ID: id}, &out); err != nil {
		return models.Activity{}, err
	}
	return out, nil
}

// Create creates an activity.
func (r *Repository) Create(ctx context.Context, cmd models.ActivityCommand) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(ctx, "/Integracion/CrearActividad", cmd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates an activity.
func (r *Repository) Update(ctx context.Context, cmd models.ActivityCommand) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Put(ctx, "/Integracion/ActualizarActividad", cmd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete deletes an activity on behalf of requesterID.
func (r *Repository) Delete(ctx context.Context, requesterID, activityID int) (*models.APIMessage, error) {
	var out models.APIMessage
	body := deleteActivity{RequesterID: requesterID, ActivityID: activityID}
	if err := r.api.Post(ctx, "/Integracion/EliminarActividad", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schedules lists the schedules of an activity.
func (r *Repository) Schedules(ctx context.Context, activityID int) ([]models.Schedule, error) {
	var out []models.Schedule
	if err := r.api.Post(ctx, "/Integracion/GetHorariosPorAct", activityRef{ActivityID: activityID}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Schedule{}
	}
	return out, nil
}

// Schedule returns one schedule.
func (r *Repository) Schedule(ctx context.Context, id int) (models.Schedule, error) {
	var out models.Schedule
	if err := r.api.Post(ctx, "/Integracion/GetHorarioById", byID{ID: id}, &out); err != nil {
		return models.Schedule{}, err
	}
	return out, nil
}

// CreateSchedule adds a schedule to an activity.
func (r *Repository) CreateSchedule(ctx context.Context, in models.ScheduleInput) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(ctx, "/HorariosActividad", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchedule deletes a schedule on behalf of requesterID.
func (r *Repository) DeleteSchedule(ctx context.Context, requesterID, scheduleID int) (*models.APIMessage, error) {
	var out models.APIMessage
	body := deleteSchedule{RequesterID: requesterID, ScheduleID: scheduleID}
	if err := r.api.Post(ctx, "/Integracion/EliminarHorario", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
