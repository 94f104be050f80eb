package activities

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/voluntariado/portal/internal/locations"
	"github.com/voluntariado/portal/internal/models"
)

var (
	errBadDate      = errors.New("activities: unreadable date")
	errDateOrder    = errors.New("activities: end before start")
	errBadLocation  = errors.New("activities: district not in canton")
	errWrongOrg     = errors.New("activities: activity of another organization")
	errNoSuchParent = errors.New("activities: schedule of another activity")
)

// Places lists the districts a location can point at.
type Places interface {
	Districts(ctx context.Context, country, province, canton int) ([]locations.Option, error)
}

var momentLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339, "2006-01-02"}

func parseMoment(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range momentLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDate
}

// checkSpan requires both moments to parse and end not to precede start.
func checkSpan(start, end string) error {
	from, err := parseMoment(start)
	if err != nil {
		return err
	}
	to, err := parseMoment(end)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return errDateOrder
	}
	return nil
}

// checkLocation verifies the district belongs to the selected canton.
func checkLocation(ctx context.Context, places Places, loc models.LocationInput) error {
	districts, err := places.Districts(ctx, loc.CountryID, loc.ProvinceID, loc.CantonID)
	if err != nil {
		return err
	}
	for _, d := range districts {
		if d.ID == loc.DistrictID {
			return nil
		}
	}
	return errBadLocation
}
