package registrations

import (
	"testing"

	"github.com/voluntariado/portal/internal/models"
)

func TestNormalizeAcceptsBothCasings(t *testing.T) {
	t.Parallel()

	req := models.EnrollmentRequest{UserID: 7, OrganizationID: 4, ActivityID: 10, ScheduleID: 101}
	cases := map[string]string{
		"camel":  `{"idParticipanteActividad":55,"idActividad":10,"idHorarioActividad":101,"fechaInscripcion":"2025-03-01T10:00:00","cuposRestantes":3}`,
		"pascal": `{"IdParticipanteActividad":55,"IdActividad":10,"IdHorarioActividad":101,"FechaInscripcion":"2025-03-01T10:00:00","CuposRestantes":3}`,
	}
	for name, body := range cases {
		out, err := normalize([]byte(body), "fechaInscripcion", req)
		if err != nil {
			t.Fatalf("%s: normalize() error = %v", name, err)
		}
		if out.ParticipationID != 55 || out.RemainingSeats != 3 || out.At != "2025-03-01T10:00:00" {
			t.Fatalf("%s: outcome = %+v", name, out)
		}
		if out.Key() != (Key{10, 101}) {
			t.Fatalf("%s: key = %+v", name, out.Key())
		}
	}
}

func TestNormalizeFallsBackToRequest(t *testing.T) {
	t.Parallel()

	req := models.EnrollmentRequest{UserID: 7, OrganizationID: 4, ActivityID: 10, ScheduleID: 101}
	out, err := normalize([]byte(`{"fechaRetiro":null}`), "fechaRetiro", req)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if out.UserID != 7 || out.OrganizationID != 4 || out.Key() != (Key{10, 101}) {
		t.Fatalf("outcome = %+v", out)
	}
	if out.RemainingSeats != 0 || out.At != "" {
		t.Fatalf("missing fields = %+v", out)
	}

	if out, err := normalize(nil, "fechaRetiro", req); err != nil || out.SlotID != 101 {
		t.Fatalf("empty body = %+v, %v", out, err)
	}
}

func TestNormalizeRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	if _, err := normalize([]byte(`[1,2]`), "fechaRetiro", models.EnrollmentRequest{}); err == nil {
		t.Fatal("expected error")
	}
}
