package models

// Credentials is the login body.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AccountInput is the user block of a full registration.
type AccountInput struct {
	Username string `json:"username" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// ProfileInput is the profile block of a full registration.
type ProfileInput struct {
	IdentifierID   int     `json:"idIdentificador" binding:"required,gt=0"`
	Identification string  `json:"identificacion" binding:"required"`
	FirstName      string  `json:"nombre" binding:"required"`
	LastName       string  `json:"apellidoP" binding:"required"`
	SecondLastName *string `json:"apellidoM"`
	BirthDate      string  `json:"fechaNacimiento" binding:"required,datetime=2006-01-02"`
	UniversityID   *int    `json:"idUniversidad"`
	Career         *string `json:"carrera"`
	Biography      *string `json:"bibliografia"`
}

// LocationInput is the location block of a full registration.
type LocationInput struct {
	CountryID  int      `json:"idPais" binding:"required,gt=0"`
	ProvinceID int      `json:"idProvincia" binding:"required,gt=0"`
	CantonID   int      `json:"idCanton" binding:"required,gt=0"`
	DistrictID int      `json:"idDistrito" binding:"required,gt=0"`
	Address    *string  `json:"direccion"`
	PostalCode *string  `json:"codigoPostal"`
	Latitude   *float64 `json:"latitud"`
	Longitude  *float64 `json:"longitud"`
}

// CorrespondenceInput is a contact channel of a full registration.
type CorrespondenceInput struct {
	TypeID  int     `json:"idTipoCorrespondencia" binding:"required,gt=0"`
	Value   string  `json:"valor" binding:"required"`
	Consent *string `json:"consentimiento" binding:"omitempty,oneof=S N"`
}

// Registration is the full sign-up body.
type Registration struct {
	Account        AccountInput          `json:"usuario"`
	Profile        ProfileInput          `json:"perfil"`
	Location       LocationInput         `json:"ubicacion"`
	Correspondence []CorrespondenceInput `json:"correspondencia" binding:"dive"`
}

// UsernameInput is used by password recovery and activation resend.
type UsernameInput struct {
	Username string `json:"username" binding:"required"`
}

// PasswordReset sets a new password using a recovery token.
type PasswordReset struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"nuevaPassword" binding:"required,min=8"`
}

// PasswordChange sets a new password using the current one.
type PasswordChange struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"nuevaPassword" binding:"required,min=8,nefield=Password"`
}

// HoursDetail is one participation in the hours breakdown.
type HoursDetail struct {
	OrganizationID int     `json:"idOrganizacion"`
	ActivityID     int     `json:"idActividad"`
	Activity       string  `json:"actividad"`
	Date           string  `json:"fecha"`
	Hours          float64 `json:"horas"`
}

// Hours is the volunteer hours summary of a user.
type Hours struct {
	TotalHours        float64       `json:"horasTotales"`
	Activities        int           `json:"actividades"`
	LastParticipation *string       `json:"ultimaParticipacion"`
	Breakdown         []HoursDetail `json:"desglose"`
}

// Profile is the normalized profile view of a user.
type Profile struct {
	ProfileID         *int    `json:"idPerfil"`
	UserID            *int    `json:"idUsuario"`
	LocationID        *int    `json:"idUbicacion"`
	IdentifierID      *int    `json:"idIdentificador"`
	UniversityID      *int    `json:"idUniversidad"`
	Identification    *string `json:"identificacion"`
	FirstName         *string `json:"nombre"`
	LastName          *string `json:"apellidoP"`
	SecondLastName    *string `json:"apellidoM"`
	BirthDate         *string `json:"fechaNacimiento"`
	Career            *string `json:"carrera"`
	Biography         *string `json:"bibliografia"`
	ValidFrom         *string `json:"fechaDesde"`
	ValidTo           *string `json:"fechaHasta"`
	Status            *string `json:"estado"`
	UniversityName    *string `json:"universidadNombre"`
	UniversityAcronym *string `json:"universidadSiglas"`
}
