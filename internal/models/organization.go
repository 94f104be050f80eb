package models

import (
	"encoding/json"
	"strings"
)

// Flag decodes the backend's boolean-as-string fields ("true"/"false") and
// also accepts real JSON booleans.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		*f = Flag(strings.EqualFold(strings.TrimSpace(t), "true"))
	default:
		*f = false
	}
	return nil
}

// RoleAPI is a role as returned by GetOrganizacionesConEstado.
type RoleAPI struct {
	ID      int    `json:"idRol"`
	Name    string `json:"nombreRol"`
	IsAdmin Flag   `json:"esAdmin"`
}

// Role is a normalized organization role of the current user.
type Role struct {
	ID      int    `json:"idRol"`
	Name    string `json:"nombreRol"`
	IsAdmin bool   `json:"isAdmin"`
}

// OrganizationAPI is an organization with the user's roles, as returned by the backend.
type OrganizationAPI struct {
	ID          int       `json:"idOrganizacion"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion,omitempty"`
	Roles       []RoleAPI `json:"rolesUsuario"`
}

// Organization is an organization membership of the current user.
type Organization struct {
	ID          int    `json:"idOrganizacion"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	Roles       []Role `json:"rolesUsuario"`
}

// Normalize converts the backend shape into an Organization.
func (o OrganizationAPI) Normalize() Organization {
	org := Organization{ID: o.ID, Name: o.Name, Description: o.Description}
	if o.Roles != nil {
		org.Roles = make([]Role, 0, len(o.Roles))
		for _, r := range o.Roles {
			org.Roles = append(org.Roles, Role{ID: r.ID, Name: r.Name, IsAdmin: bool(r.IsAdmin)})
		}
	}
	return org
}

// MemberAPI is an organization member row; esActivo is "A" or "I".
type MemberAPI struct {
	RoleAssignmentID int    `json:"idRolUsuarioOrganizacion"`
	UserID           int    `json:"idUsuario"`
	Username         string `json:"username"`
	FirstName        string `json:"nombre,omitempty"`
	LastName         string `json:"apellidoP,omitempty"`
	SecondLastName   string `json:"apellidoM,omitempty"`
	RoleID           int    `json:"idRol"`
	RoleName         string `json:"nombreRol"`
	Status           string `json:"esActivo"`
}

// Member is a normalized organization member.
type Member struct {
	RoleAssignmentID int    `json:"idRolUsuarioOrganizacion"`
	UserID           int    `json:"idUsuario"`
	Username         string `json:"username"`
	FirstName        string `json:"nombre,omitempty"`
	LastName         string `json:"apellidoP,omitempty"`
	SecondLastName   string `json:"apellidoM,omitempty"`
	RoleID           int    `json:"idRol"`
	RoleName         string `json:"nombreRol"`
	Active           bool   `json:"isActivo"`
}

// Normalize converts the backend shape into a Member.
func (m MemberAPI) Normalize() Member {
	return Member{
		RoleAssignmentID: m.RoleAssignmentID,
		UserID:           m.UserID,
		Username:         m.Username,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		SecondLastName:   m.SecondLastName,
		RoleID:           m.RoleID,
		RoleName:         m.RoleName,
		Active:           strings.EqualFold(m.Status, "A"),
	}
}

// OrganizationDetail is the nested organization block used by update requests.
type OrganizationDetail struct {
	ID           int    `json:"idOrganizacion"`
	Name         string `json:"nombre" binding:"required,max=255"`
	Description  string `json:"descripcion" binding:"max=1000"`
	UniversityID int    `json:"idUniversidad"`
}

// OrganizationLocation is the nested location block used by update requests.
type OrganizationLocation struct {
	ID         int    `json:"idUbicacion"`
	CountryID  int    `json:"idPais" binding:"required,gt=0"`
	ProvinceID int    `json:"idProvincia" binding:"required,gt=0"`
	CantonID   int    `json:"idCanton" binding:"required,gt=0"`
	DistrictID int    `json:"idDistrito" binding:"required,gt=0"`
	Address    string `json:"direccion" binding:"max=200"`
}

// OrganizationUpdate is the body of ActualizarOrganizacion.
type OrganizationUpdate struct {
	RequesterID  int                  `json:"idUsuarioSolicitante"`
	Organization OrganizationDetail   `json:"organizacion"`
	Location     OrganizationLocation `json:"ubicacion"`
}

// Volunteer actions accepted by GestionarVoluntariado.
const (
	VolunteerSubscribe   = "suscribir"
	VolunteerUnsubscribe = "desuscribir"
)
