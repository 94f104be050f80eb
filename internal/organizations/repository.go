package organizations

import (
	"context"
	"encoding/json"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Repository proxies organization membership and administration endpoints.
type Repository struct {
	api *backend.Client
}

// NewRepository creates an organizations repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

type userRef struct {
	UserID int `json:"idUsuario"`
}

type orgRef struct {
	OrganizationID int `json:"idOrganizacion"`
}

type byID struct {
	ID int `json:"id"`
}

// OrganizationsForUser returns the user's organizations with normalized roles.
func (r *Repository) OrganizationsForUser(ctx context.Context, userID int) ([]models.Organization, error) {
	var raw []models.OrganizationAPI
	if err := r.api.Post(ctx, "/Integracion/GetOrganizacionesConEstado", userRef{UserID: userID}, &raw); err != nil {
		return nil, err
	}
	orgs := make([]models.Organization, 0, len(raw))
	for _, o := range raw {
		orgs = append(orgs, o.Normalize())
	}
	return orgs, nil
}

// GetByID returns the organization detail as the backend shapes it.
func (r *Repository) GetByID(ctx context.Context, id int) (json.RawMessage, error) {
	var out json.RawMessage
	if err := r.api.Post(ctx, "/Integracion/GetOrganizacionById", byID{ID: id}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates an organization and its location.
func (r *Repository) Update(ctx context.Context, in models.OrganizationUpdate) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Put(ctx, "/Integracion/ActualizarOrganizacion", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type volunteerAction struct {
	UserID         int    `json:"idUsuario"`
	OrganizationID int    `json:"idOrganizacion"`
	Action         string `json:"accion"`
}

// ManageVolunteer subscribes or unsubscribes the user as a volunteer.
func (r *Repository) ManageVolunteer(ctx context.Context, userID, orgID int, action string) (*models.APIMessage, error) {
	var out models.APIMessage
	body := volunteerAction{UserID: userID, OrganizationID: orgID, Action: action}
	if err := r.api.Post(ctx, "/Integracion/GestionarVoluntariado", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Members lists the organization's members.
func (r *Repository) Members(ctx context.Context, orgID int) ([]models.Member, error) {
	var raw []models.MemberAPI
	if err := r.api.Post(ctx, "/Integracion/GetUsuariosPorOrg", orgRef{OrganizationID: orgID}, &raw); err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(raw))
	for _, m := range raw {
		members = append(members, m.Normalize())
	}
	return members, nil
}

type memberCommand struct {
	RequesterID      int   `json:"idUsuarioSolicitante"`
	RoleAssignmentID int   `json:"idRolUsuarioOrganizacion"`
	Active           *bool `json:"esActivo,omitempty"`
	NewRoleID        int   `json:"idNuevoRol,omitempty"`
}

// RemoveMember removes a member's role assignment.
func (r *Repository) RemoveMember(ctx context.Context, requesterID, assignmentID int) (*models.APIMessage, error) {
	var out models.APIMessage
	body := memberCommand{RequesterID: requesterID, RoleAssignmentID: assignmentID}
	if err := r.api.Post(ctx, "/Integracion/EliminarUsuarioOrg", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMemberActive activates or deactivates a member.
func (r *Repository) SetMemberActive(ctx context.Context, requesterID, assignmentID int, active bool) (*models.APIMessage, error) {
	var out models.APIMessage
	body := memberCommand{RequesterID: requesterID, RoleAssignmentID: assignmentID, Active: &active}
	if err := r.api.Put(ctx, "/Integracion/ActualizarUsuarioOrg", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeMemberRole assigns a new role to a member.
func (r *Repository) ChangeMemberRole(ctx context.Context, requesterID, assignmentID, roleID int) (*models.APIMessage, error) {
	var out models.APIMessage
	body := memberCommand{RequesterID: requesterID, RoleAssignmentID: assignmentID, NewRoleID: roleID}
	if err := r.api.Put(ctx, "/Integracion/CambiarRolUsuario", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
