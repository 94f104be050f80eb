package models

// Activity is a volunteering event as listed by the backend. The same shape is
// used for the public listing (with schedules) and the admin listing.
type Activity struct {
	ID             int              `json:"idActividad"`
	OrganizationID int              `json:"idOrganizacion,omitempty"`
	CategoryID     int              `json:"idCategoria,omitempty"`
	Name           string           `json:"nombre"`
	Description    string           `json:"descripcion,omitempty"`
	StartsAt       *string          `json:"fechaInicio"`
	EndsAt         *string          `json:"fechaFin"`
	Hours          *float64         `json:"horas"`
	Seats          int              `json:"cupos"`
	Status         string           `json:"situacion,omitempty"`
	State          string           `json:"estado,omitempty"`
	Schedules      []Schedule       `json:"horarios,omitempty"`
	Organization   *OrganizationRef `json:"organizacion,omitempty"`
	Location       *Address         `json:"ubicacion,omitempty"`
	Creator        *UserRef         `json:"usuarioCreador,omitempty"`
}

// Schedule is a concrete date/time slot of an activity.
type Schedule struct {
	ID           int     `json:"idHorarioActividad"`
	ActivityID   int     `json:"idActividad,omitempty"`
	Date         *string `json:"fecha"`
	StartsAt     *string `json:"horaInicio"`
	EndsAt       *string `json:"horaFin"`
	Description  string  `json:"descripcion,omitempty"`
	Status       string  `json:"situacion,omitempty"`
	State        string  `json:"estado,omitempty"`
	UserEnrolled bool    `json:"usuarioInscrito,omitempty"`
}

// OrganizationRef is the organization summary embedded in an activity.
type OrganizationRef struct {
	ID   int    `json:"idOrganizacion"`
	Name string `json:"nombre"`
}

// UserRef is the user summary embedded in an activity.
type UserRef struct {
	ID       int    `json:"idUsuario"`
	Username string `json:"username"`
}

// Address is a postal location.
type Address struct {
	CountryID  int     `json:"idPais"`
	ProvinceID int     `json:"idProvincia"`
	CantonID   int     `json:"idCanton"`
	DistrictID int     `json:"idDistrito"`
	Address    string  `json:"direccion,omitempty"`
	PostalCode string  `json:"codigoPostal,omitempty"`
	Latitude   float64 `json:"latitud"`
	Longitude  float64 `json:"longitud"`
}

// Category is an activity category.
type Category struct {
	ID          int    `json:"idCategoria"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

// ActivityInput is the activity block of create and update requests.
type ActivityInput struct {
	ID             int     `json:"idActividad,omitempty"`
	OrganizationID int     `json:"idOrganizacion"`
	CategoryID     int     `json:"idCategoria"`
	Name           string  `json:"nombre"`
	Description    string  `json:"descripcion"`
	StartsAt       string  `json:"fechaInicio"`
	EndsAt         string  `json:"fechaFin"`
	Hours          int     `json:"horas"`
	Seats          int     `json:"cupos"`
	Location       Address `json:"ubicacion"`
}

// ActivityCommand wraps an activity with the requesting user.
type ActivityCommand struct {
	RequesterID int           `json:"idUsuarioSolicitante"`
	Activity    ActivityInput `json:"actividad"`
}

// ScheduleInput is the body of HorariosActividad.
type ScheduleInput struct {
	OrganizationID int    `json:"idOrganizacion"`
	ActivityID     int    `json:"idActividad"`
	UserID         int    `json:"idUsuario"`
	Date           string `json:"fecha"`
	StartsAt       string `json:"horaInicio"`
	EndsAt         string `json:"horaFin"`
	Description    string `json:"descripcion,omitempty"`
	Status         string `json:"situacion"`
	State          string `json:"estado"`
}

// Schedule situations: initial, pending, confirmed, approved, finished.
const (
	ScheduleInitial   = "I"
	SchedulePending   = "P"
	ScheduleConfirmed = "C"
	ScheduleApproved  = "A"
	ScheduleFinished  = "F"
)

// EnrollmentRequest is the body of inscribir-usuario and desinscribir-usuario.
type EnrollmentRequest struct {
	UserID         int `json:"idUsuario"`
	OrganizationID int `json:"idOrganizacion"`
	ActivityID     int `json:"idActividad"`
	ScheduleID     int `json:"idHorarioActividad"`
}

// APIMessage is the generic acknowledgement returned by most backend commands.
type APIMessage struct {
	Message   string `json:"mensaje"`
	ErrorCode *int   `json:"codigoError,omitempty"`
	Detail    string `json:"detalle,omitempty"`
	Token     string `json:"token,omitempty"`
	UserID    int    `json:"idUsuario,omitempty"`
	ID        int    `json:"id,omitempty"`
}
