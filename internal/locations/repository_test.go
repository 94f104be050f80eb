package locations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/pkg/storage"
)

func referenceServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/Paises":
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"idPais": 1, "nombre": "Costa Rica", "codigo": "CR"}})
		case "/Ubicaciones/Provincias":
			if r.URL.Query().Get("idPais") != "1" {
				t.Errorf("idPais = %q", r.URL.Query().Get("idPais"))
			}
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"id": 7, "nombre": "San José"}})
		case "/Ubicaciones/Distritos":
			q := r.URL.Query()
			if q.Get("idPais") != "1" || q.Get("idProvincia") != "7" || q.Get("idCanton") != "70" {
				t.Errorf("query = %v", q)
			}
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"id": 700, "nombre": "Carmen"}})
		case "/Ubicaciones/CodigoPostal":
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRepositoryMissingIDsSkipTheNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := referenceServer(t, &hits)
	repo := NewRepository(backend.NewClient(srv.URL, time.Second, nil), nil, 0, nil)
	ctx := context.Background()

	if list, err := repo.Provinces(ctx, 0); err != nil || len(list) != 0 || list == nil {
		t.Fatalf("Provinces(0) = %v, %v", list, err)
	}
	if list, err := repo.Cantons(ctx, 1, 0); err != nil || len(list) != 0 {
		t.Fatalf("Cantons(1, 0) = %v, %v", list, err)
	}
	if list, err := repo.Districts(ctx, 1, 7, 0); err != nil || len(list) != 0 {
		t.Fatalf("Districts(1, 7, 0) = %v, %v", list, err)
	}
	if hits.Load() != 0 {
		t.Fatalf("backend hit %d times", hits.Load())
	}
}

func TestRepositoryPassesFullChainAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := referenceServer(t, &hits)
	repo := NewRepository(backend.NewClient(srv.URL, time.Second, nil), storage.NewMemory(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		list, err := repo.Districts(ctx, 1, 7, 70)
		if err != nil || len(list) != 1 || list[0].ID != 700 || list[0].Name != "Carmen" {
			t.Fatalf("Districts() = %+v, %v", list, err)
		}
	}
	countries, err := repo.Countries(ctx)
	if err != nil || len(countries) != 1 || countries[0].ID != 1 || countries[0].Code != "CR" {
		t.Fatalf("Countries() = %+v, %v", countries, err)
	}
	if hits.Load() != 2 {
		t.Fatalf("backend hit %d times, want 2 (second districts call cached)", hits.Load())
	}
}

func TestRepositoryPostalCodeMissingIsEmpty(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := referenceServer(t, &hits)
	repo := NewRepository(backend.NewClient(srv.URL, time.Second, nil), nil, 0, nil)
	code, err := repo.PostalCode(context.Background(), 700)
	if err != nil || code != "" {
		t.Fatalf("PostalCode() = %q, %v", code, err)
	}
}
