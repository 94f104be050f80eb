package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/pkg/response"
)

func TestWrapClassifiesBackendStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		authed bool
		want   Kind
	}{
		{http.StatusNotFound, true, KindNotFound},
		{http.StatusForbidden, true, KindForbidden},
		{http.StatusConflict, true, KindConflict},
		{http.StatusBadRequest, true, KindInvalidRequest},
		{http.StatusUnauthorized, false, KindAuth},
		{http.StatusUnauthorized, true, KindSessionExpired},
		{http.StatusTeapot, true, KindUnknown},
	}
	for _, tc := range cases {
		err := Wrap(OpRegister, fmt.Errorf("call: %w", &backend.StatusError{Status: tc.status, Authenticated: tc.authed}))
		if got := KindOf(err); got != tc.want {
			t.Fatalf("status %d authed=%v: kind = %s, want %s", tc.status, tc.authed, got, tc.want)
		}
	}
}

func TestWrapTransportErrorsAreUnavailable(t *testing.T) {
	t.Parallel()

	if got := KindOf(Wrap("", context.DeadlineExceeded)); got != KindUnavailable {
		t.Fatalf("kind = %s", got)
	}
	if got := HTTPStatus(Wrap("", errors.New("dial tcp: refused"))); got != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", got)
	}
}

func TestWrapKeepsClassifiedErrorAndFillsOp(t *testing.T) {
	t.Parallel()

	err := Wrap(OpUnregister, E(KindNoSession, ""))
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Op != OpUnregister || appErr.Kind != KindNoSession {
		t.Fatalf("err = %#v", err)
	}
}

func TestMessagesDistinguishOperations(t *testing.T) {
	t.Parallel()

	p := i18n.Printer(language.Spanish)
	conflict := &backend.StatusError{Status: http.StatusConflict, Message: "raw backend text"}

	reg := Message(p, Wrap(OpRegister, conflict))
	unreg := Message(p, Wrap(OpUnregister, conflict))
	if reg == unreg {
		t.Fatalf("register and unregister conflict messages must differ: %q", reg)
	}
	if reg != "No se pudo completar la inscripción (conflicto)." {
		t.Fatalf("register conflict = %q", reg)
	}

	seen := map[string]Kind{}
	for _, status := range []int{400, 403, 404, 409, 500} {
		err := Wrap(OpRegister, &backend.StatusError{Status: status})
		msg := Message(p, err)
		if prev, dup := seen[msg]; dup {
			t.Fatalf("kinds %s and %s share message %q", prev, KindOf(err), msg)
		}
		seen[msg] = KindOf(err)
	}
}

func TestEnrollmentUnknownNeverShowsBackendText(t *testing.T) {
	t.Parallel()

	p := i18n.Printer(language.Spanish)
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusTeapot} {
		err := Wrap(OpRegister, &backend.StatusError{Status: status, Message: "procedimiento falló", Authenticated: true})
		if got := KindOf(err); got != KindUnknown {
			t.Fatalf("register status %d: kind = %s, want unknown", status, got)
		}
		if got := Message(p, err); got != "Ocurrió un error al inscribirte. Intenta nuevamente." {
			t.Fatalf("register status %d: message = %q", status, got)
		}
		err = Wrap(OpUnregister, &backend.StatusError{Status: status, Message: "procedimiento falló", Authenticated: true})
		if got := Message(p, err); got != "Ocurrió un error al desinscribirte. Intenta nuevamente." {
			t.Fatalf("unregister status %d: message = %q", status, got)
		}
	}

	err := Wrap(OpRegister, errors.New("dial tcp: refused"))
	if KindOf(err) != KindUnknown || Message(p, err) != "Ocurrió un error al inscribirte. Intenta nuevamente." {
		t.Fatalf("transport failure on register = %s %q", KindOf(err), Message(p, err))
	}
	if got := KindOf(Wrap(OpRegister, &backend.StatusError{Status: http.StatusUnauthorized, Authenticated: true})); got != KindSessionExpired {
		t.Fatalf("401 on register = %s, want session_expired", got)
	}
}

func TestMessageFallsBackToBackendTextForGenericUnknown(t *testing.T) {
	t.Parallel()

	p := i18n.Printer(language.English)
	err := Wrap("", &backend.StatusError{Status: http.StatusInternalServerError, Message: "procedimiento falló"})
	if got := Message(p, err); got != "procedimiento falló" {
		t.Fatalf("message = %q", got)
	}
	if got := Message(p, Wrap("", &backend.StatusError{Status: http.StatusInternalServerError})); got != i18n.MsgUnknown {
		t.Fatalf("message without detail = %q", got)
	}
	err = Wrap("", &backend.StatusError{Status: http.StatusNotFound, Message: "raw"})
	if got := Message(p, err); got != i18n.MsgNotFound {
		t.Fatalf("message = %q, want localized not-found", got)
	}
}

func TestWriteSessionExpiredRedirectsToLoginWithReturnURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/profile/hours", func(c *gin.Context) {
		Write(c, Wrap("", &backend.StatusError{Status: http.StatusUnauthorized, Authenticated: true}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile/hours?tab=2", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var body response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Redirect == nil || body.Redirect.To != LoginPath || body.Redirect.ReturnURL != "/profile/hours?tab=2" {
		t.Fatalf("redirect = %+v", body.Redirect)
	}
}

func TestSafeReturnURL(t *testing.T) {
	t.Parallel()

	for v, want := range map[string]bool{
		"/events":            true,
		"//evil.example":     false,
		"https://evil":       false,
		"/\\evil":            false,
		"":                   false,
		"/admin/4/dashboard": true,
	} {
		if got := SafeReturnURL(v); got != want {
			t.Fatalf("SafeReturnURL(%q) = %v, want %v", v, got, want)
		}
	}
}
