// Package profile serves the signed-in volunteer's own data: the profile
// detail and the summary of volunteered hours.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Repository reads profile data from the backend.
type Repository struct {
	api *backend.Client
}

// NewRepository creates a profile repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// Hours returns the user's hours summary. Missing totals are filled from the
// breakdown.
func (r *Repository) Hours(ctx context.Context, userID int) (models.Hours, error) {
	var out models.Hours
	if err := r.api.Get(ctx, "/Actividades/mis-horas", backend.Query("idUsuario", userID), &out); err != nil {
		return models.Hours{}, err
	}
	if out.Breakdown == nil {
		out.Breakdown = []models.HoursDetail{}
	}
	if out.Activities == 0 {
		out.Activities = len(out.Breakdown)
	}
	return out, nil
}

// Profile returns the user's profile, or nil when the backend has none.
func (r *Repository) Profile(ctx context.Context, userID int) (*models.Profile, error) {
	var body json.RawMessage
	if err := r.api.Post(ctx, "/Perfiles", map[string]int{"idUsuario": userID}, &body); err != nil {
		return nil, err
	}
	p, err := normalizeProfile(body)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}
