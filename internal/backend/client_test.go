package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeCreds struct {
	token        string
	unauthorized int
}

func (f *fakeCreds) Token() string                 { return f.token }
func (f *fakeCreds) Unauthorized(context.Context) { f.unauthorized++ }

func TestClientAttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id":1,"nombre":"San José"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, nil)
	ctx := WithCredentials(context.Background(), &fakeCreds{token: "tok"})

	var out []struct {
		ID   int    `json:"id"`
		Name string `json:"nombre"`
	}
	if err := c.Get(ctx, "/Ubicaciones/Provincias", Query("idPais", 1), &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotQuery != "idPais=1" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(out) != 1 || out[0].Name != "San José" {
		t.Fatalf("out = %+v", out)
	}
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	ctx := WithCredentials(context.Background(), &fakeCreds{})
	if err := c.Post(ctx, "/x", map[string]int{"a": 1}, nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty", gotAuth)
	}
}

func TestClientReportsUnauthorizedToSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expirado"}`))
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "tok"}
	c := NewClient(srv.URL, time.Second, nil)
	err := c.Get(WithCredentials(context.Background(), creds), "/Perfiles", nil, nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusUnauthorized || !se.Authenticated || se.Message != "token expirado" {
		t.Fatalf("status error = %+v", se)
	}
	if creds.unauthorized != 1 {
		t.Fatalf("unauthorized calls = %d, want 1", creds.unauthorized)
	}
}

func TestClientDoesNotTearDownAnonymousUnauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &fakeCreds{}
	c := NewClient(srv.URL, time.Second, nil)
	err := c.Post(WithCredentials(context.Background(), creds), "/Integracion/IniciarSesion", map[string]string{}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Authenticated {
		t.Fatalf("err = %#v", err)
	}
	if creds.unauthorized != 0 {
		t.Fatalf("unauthorized calls = %d, want 0", creds.unauthorized)
	}
}

func TestErrorMessageFieldVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"mensaje":"Cupos agotados"}`: "Cupos agotados",
		`{"Message":"Not here"}`:       "Not here",
		`"plain"`:                      "plain",
		`<html>`:                       "",
		``:                             "",
	}
	for raw, want := range cases {
		if got := errorMessage([]byte(raw)); got != want {
			t.Fatalf("errorMessage(%q) = %q, want %q", raw, got, want)
		}
	}
}
