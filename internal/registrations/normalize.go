package registrations

import (
	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Outcome is the backend's answer to an enrollment or a withdrawal.
type Outcome struct {
	ParticipationID int    `json:"idParticipanteActividad,omitempty"`
	UserID          int    `json:"idUsuario"`
	OrganizationID  int    `json:"idOrganizacion"`
	ActivityID      int    `json:"idActividad"`
	SlotID          int    `json:"idHorarioActividad"`
	At              string `json:"fecha,omitempty"`
	RemainingSeats  int    `json:"cuposRestantes"`
}

// Key returns the slot the outcome refers to.
func (o Outcome) Key() Key { return Key{ActivityID: o.ActivityID, SlotID: o.SlotID} }

// normalize builds an Outcome from a raw response. Ids the backend leaves out
// are taken from the request; a missing seat count reads as zero.
func normalize(body []byte, dateField string, req models.EnrollmentRequest) (Outcome, error) {
	f, err := backend.DecodeFields(body)
	if err != nil {
		return Outcome{}, err
	}
	pick := func(name string, fallback int) int {
		if v, _ := f.Int(name); v != 0 {
			return v
		}
		return fallback
	}
	participation, _ := f.Int("idParticipanteActividad")
	seats, _ := f.Int("cuposRestantes")
	at, _ := f.String(dateField)
	return Outcome{
		ParticipationID: participation,
		UserID:          pick("idUsuario", req.UserID),
		OrganizationID:  pick("idOrganizacion", req.OrganizationID),
		ActivityID:      pick("idActividad", req.ActivityID),
		SlotID:          pick("idHorarioActividad", req.ScheduleID),
		At:              at,
		RemainingSeats:  seats,
	}, nil
}
