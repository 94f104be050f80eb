package models

// Country is a country of the location catalog.
type Country struct {
	ID     int    `json:"idPais"`
	Name   string `json:"nombre"`
	Code   string `json:"codigo,omitempty"`
	Status string `json:"estado,omitempty"`
}

// Place is a province, canton or district.
type Place struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Code   string `json:"codigo,omitempty"`
	Status string `json:"estado,omitempty"`
}

// PostalCode is the postal code of a district.
type PostalCode struct {
	Code string `json:"codigo"`
}

// CorrespondenceType is a contact channel kind (email, phone, ...).
type CorrespondenceType struct {
	ID          int    `json:"idTipoCorrespondencia"`
	Description string `json:"descripcion"`
	Status      string `json:"estado,omitempty"`
}

// IdentifierType is an identity document kind.
type IdentifierType struct {
	ID          int    `json:"idIdentificador"`
	Description string `json:"descripcion"`
	Status      string `json:"estado,omitempty"`
}

// University is a university of the reference catalog.
type University struct {
	ID      int    `json:"idUniversidad"`
	Name    string `json:"nombre"`
	Acronym string `json:"siglas,omitempty"`
	Status  string `json:"estado,omitempty"`
}
