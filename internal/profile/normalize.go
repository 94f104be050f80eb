package profile

import (
	"bytes"
	"encoding/json"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

func intPtr(f backend.Fields, names ...string) *int {
	if v, ok := f.Int(names...); ok {
		return &v
	}
	return nil
}

func strPtr(f backend.Fields, names ...string) *string {
	if v, ok := f.String(names...); ok {
		return &v
	}
	return nil
}

// normalizeProfile maps the several profile shapes the backend has used onto
// models.Profile. A list body yields its first element.
func normalizeProfile(body []byte) (*models.Profile, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	if body[0] == '[' {
		var list []backend.Fields
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}
		return fromFields(list[0]), nil
	}
	f, err := backend.DecodeFields(body)
	if err != nil {
		return nil, err
	}
	return fromFields(f), nil
}

func fromFields(f backend.Fields) *models.Profile {
	p := &models.Profile{
		ProfileID:      intPtr(f, "idPerfil"),
		UserID:         intPtr(f, "idUsuario"),
		LocationID:     intPtr(f, "idUbicacion"),
		IdentifierID:   intPtr(f, "idIdentificador"),
		UniversityID:   intPtr(f, "idUniversidad"),
		Identification: strPtr(f, "identificacion"),
		FirstName:      strPtr(f, "nombre"),
		LastName:       strPtr(f, "apellidoP", "primerApellido"),
		SecondLastName: strPtr(f, "apellidoM", "segundoApellido"),
		BirthDate:      strPtr(f, "fechaNacimiento"),
		Career:         strPtr(f, "carrera"),
		Biography:      strPtr(f, "bibliografia", "Bibliografía"),
		ValidFrom:      strPtr(f, "fechaDesde"),
		ValidTo:        strPtr(f, "fechaHasta"),
		Status:         strPtr(f, "estado"),
	}
	if uni, ok := f.Object("universidad", "idUniversidadNavigation"); ok {
		p.UniversityName = strPtr(uni, "nombre")
		p.UniversityAcronym = strPtr(uni, "siglas")
	}
	return p
}
