package registrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/internal/views"
	"github.com/voluntariado/portal/pkg/response"
	"github.com/voluntariado/portal/pkg/storage"
)

type fakeBackend struct {
	fakeEnroller
	list  []models.Activity
	loads int
}

func (f *fakeBackend) Available(ctx context.Context, userID int) ([]models.Activity, error) {
	f.loads++
	return f.list, nil
}

func newTestRouter(t *testing.T, api Backend, userID int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	scoped := storage.Scope(storage.NewMemory(), "s1", time.Hour)
	if userID > 0 {
		ctx := context.Background()
		if err := storage.SetJSON(ctx, scoped, auth.KeyToken, "tok", 0); err != nil {
			t.Fatalf("seed token: %v", err)
		}
		if err := storage.SetJSON(ctx, scoped, auth.KeyUserID, userID, 0); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	r := gin.New()
	r.Use(i18n.Middleware(language.Spanish.String()))
	r.Use(func(c *gin.Context) {
		auth.Attach(c, auth.NewSessionStore(c.Request.Context(), "s1", scoped, nil, nil))
		c.Next()
	})
	h := NewHandler(api, views.NewRegistry[*Reconciler]("events", nil), nil)
	h.Register(r.Group("/events"))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) response.Body {
	t.Helper()
	body := response.Body{Data: data}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestEnrollRouteReportsSeatsInMessage(t *testing.T) {
	api := &fakeBackend{fakeEnroller: fakeEnroller{seats: 3}, list: listing()}
	r := newTestRouter(t, api, 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events/10/slots/101/registration", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out EnrollmentResponse
	decode(t, w, &out)
	if !out.Applied || !out.Registered || out.RemainingSeats != 3 {
		t.Fatalf("response = %+v", out)
	}
	if out.Message != "Te inscribiste exitosamente en \"Reforestación\". Cupos restantes: 3" {
		t.Fatalf("message = %q", out.Message)
	}
	if api.loads != 1 {
		t.Fatalf("listing loads = %d, want 1", api.loads)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	var events []EventView
	decode(t, w, &events)
	if len(events) != 2 || events[0].Seats != 3 {
		t.Fatalf("events = %+v", events)
	}
	for _, s := range events[0].Slots {
		if s.RemainingSeats != 3 {
			t.Fatalf("slot %d seats = %d", s.ID, s.RemainingSeats)
		}
	}
}

func TestEnrollWithoutSessionAsksToSignIn(t *testing.T) {
	api := &fakeBackend{list: listing()}
	r := newTestRouter(t, api, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events/10/slots/101/registration", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w, nil)
	if body.Code != string(apperr.KindNoSession) || body.Error != "Debes iniciar sesión para poder inscribirte." {
		t.Fatalf("body = %+v", body)
	}
	if api.loads != 0 || api.callCount() != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestEnrollUnknownSlotIsNotFound(t *testing.T) {
	api := &fakeBackend{list: listing()}
	r := newTestRouter(t, api, 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events/10/slots/999/registration", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if api.callCount() != 0 {
		t.Fatal("backend must not be called")
	}
}
