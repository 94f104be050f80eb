package locations

import (
	"context"
	"fmt"
)

// Resolver loads the list of each level from the full chain of upstream ids.
// Implementations return an empty list without any I/O when an upstream id
// is missing.
type Resolver interface {
	Countries(ctx context.Context) ([]Option, error)
	Provinces(ctx context.Context, country int) ([]Option, error)
	Cantons(ctx context.Context, country, province int) ([]Option, error)
	Districts(ctx context.Context, country, province, canton int) ([]Option, error)
}

// Load runs the resolver step for f.
func Load(ctx context.Context, r Resolver, f Fetch) ([]Option, error) {
	c := f.Chain
	switch f.Level {
	case Country:
		return r.Countries(ctx)
	case Province:
		return r.Provinces(ctx, c[Country])
	case Canton:
		return r.Cantons(ctx, c[Country], c[Province])
	case District:
		return r.Districts(ctx, c[Country], c[Province], c[Canton])
	}
	return nil, fmt.Errorf("locations: unknown level %d", f.Level)
}

func missing(ids ...int) bool {
	for _, id := range ids {
		if id <= 0 {
			return true
		}
	}
	return false
}
