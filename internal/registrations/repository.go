package registrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Repository talks to the enrollment endpoints of the backend.
type Repository struct {
	api *backend.Client
}

// NewRepository creates a registrations repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// Available returns the activities open for enrollment, with the user's
// enrollment marked on each schedule.
func (r *Repository) Available(ctx context.Context, userID int) ([]models.Activity, error) {
	var list []models.Activity
	if err := r.api.Get(ctx, "/Actividades/available-activities", backend.Query("idUsuario", userID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Enroll registers the user in a schedule.
func (r *Repository) Enroll(ctx context.Context, req models.EnrollmentRequest) (Outcome, error) {
	return r.send(ctx, "/Actividades/inscribir-usuario", "fechaInscripcion", req)
}

// Withdraw removes the user from a schedule.
func (r *Repository) Withdraw(ctx context.Context, req models.EnrollmentRequest) (Outcome, error) {
	return r.send(ctx, "/Actividades/desinscribir-usuario", "fechaRetiro", req)
}

func (r *Repository) send(ctx context.Context, path, dateField string, req models.EnrollmentRequest) (Outcome, error) {
	var body json.RawMessage
	if err := r.api.Post(ctx, path, req, &body); err != nil {
		return Outcome{}, err
	}
	out, err := normalize(body, dateField, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("decode %s response: %w", path, err)
	}
	return out, nil
}
