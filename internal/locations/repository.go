package locations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/storage"
)

const cachePrefix = "ref:"

// Repository loads reference data from the backend and caches the lists in
// the shared store. It implements Resolver.
type Repository struct {
	api    *backend.Client
	cache  storage.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewRepository creates a reference data repository. A nil cache or a zero
// ttl disables caching.
func NewRepository(api *backend.Client, cache storage.Store, ttl time.Duration, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{api: api, cache: cache, ttl: ttl, logger: logger}
}

// cached returns the list under key, loading and storing it on a miss.
// Cache failures only cost a backend call.
func cached[T any](ctx context.Context, r *Repository, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if r.cache != nil && r.ttl > 0 {
		var hit []T
		err := storage.GetJSON(ctx, r.cache, cachePrefix+key, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Debug("reference cache read", zap.String("key", key), zap.Error(err))
		}
	}
	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	if r.cache != nil && r.ttl > 0 {
		if err := storage.SetJSON(ctx, r.cache, cachePrefix+key, list, r.ttl); err != nil {
			r.logger.Debug("reference cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return list, nil
}

func (r *Repository) places(ctx context.Context, path string, query url.Values) ([]Option, error) {
	return cached(ctx, r, path+"?"+query.Encode(), func(ctx context.Context) ([]Option, error) {
		var raw []models.Place
		if err := r.api.Get(ctx, path, query, &raw); err != nil {
			return nil, err
		}
		out := make([]Option, 0, len(raw))
		for _, p := range raw {
			out = append(out, Option{ID: p.ID, Name: p.Name, Code: p.Code})
		}
		return out, nil
	})
}

// Countries lists countries.
func (r *Repository) Countries(ctx context.Context) ([]Option, error) {
	return cached(ctx, r, "/Paises", func(ctx context.Context) ([]Option, error) {
		var raw []models.Country
		if err := r.api.Get(ctx, "/Paises", nil, &raw); err != nil {
			return nil, err
		}
		out := make([]Option, 0, len(raw))
		for _, c := range raw {
			out = append(out, Option{ID: c.ID, Name: c.Name, Code: c.Code})
		}
		return out, nil
	})
}

// Provinces lists the provinces of country.
func (r *Repository) Provinces(ctx context.Context, country int) ([]Option, error) {
	if missing(country) {
		return []Option{}, nil
	}
	return r.places(ctx, "/Ubicaciones/Provincias", backend.Query("idPais", country))
}

// Cantons lists the cantons of a province.
func (r *Repository) Cantons(ctx context.Context, country, province int) ([]Option, error) {
	if missing(country, province) {
		return []Option{}, nil
	}
	return r.places(ctx, "/Ubicaciones/Cantones", backend.Query("idPais", country, "idProvincia", province))
}

// Districts lists the districts of a canton.
func (r *Repository) Districts(ctx context.Context, country, province, canton int) ([]Option, error) {
	if missing(country, province, canton) {
		return []Option{}, nil
	}
	return r.places(ctx, "/Ubicaciones/Distritos", backend.Query("idPais", country, "idProvincia", province, "idCanton", canton))
}

// PostalCode returns the postal code of a district, "" when it has none.
func (r *Repository) PostalCode(ctx context.Context, district int) (string, error) {
	if missing(district) {
		return "", nil
	}
	codes, err := cached(ctx, r, "postal:"+strconv.Itoa(district), func(ctx context.Context) ([]models.PostalCode, error) {
		var out models.PostalCode
		if err := r.api.Get(ctx, "/Ubicaciones/CodigoPostal", backend.Query("idDistrito", district), &out); err != nil {
			var statusErr *backend.StatusError
			if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
				return []models.PostalCode{}, nil
			}
			return nil, err
		}
		return []models.PostalCode{out}, nil
	})
	if err != nil {
		return "", fmt.Errorf("postal code of district %d: %w", district, err)
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0].Code, nil
}

// CorrespondenceTypes lists contact channel types.
func (r *Repository) CorrespondenceTypes(ctx context.Context) ([]models.CorrespondenceType, error) {
	return cached(ctx, r, "/TiposCorrespondencia", func(ctx context.Context) ([]models.CorrespondenceType, error) {
		var out []models.CorrespondenceType
		if err := r.api.Get(ctx, "/TiposCorrespondencia", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// IdentifierTypes lists identification document types.
func (r *Repository) IdentifierTypes(ctx context.Context) ([]models.IdentifierType, error) {
	return cached(ctx, r, "/TipoIdentificador", func(ctx context.Context) ([]models.IdentifierType, error) {
		var out []models.IdentifierType
		if err := r.api.Get(ctx, "/TipoIdentificador", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Universities lists universities.
func (r *Repository) Universities(ctx context.Context) ([]models.University, error) {
	return cached(ctx, r, "/Universidades", func(ctx context.Context) ([]models.University, error) {
		var out []models.University
		if err := r.api.Get(ctx, "/Universidades", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Categories lists activity categories.
func (r *Repository) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, r, "/CategoriasActividad", func(ctx context.Context) ([]models.Category, error) {
		var out []models.Category
		if err := r.api.Get(ctx, "/CategoriasActividad", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}
