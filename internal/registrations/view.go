package registrations

import "github.com/voluntariado/portal/internal/models"

// SlotView is a schedule as shown in the enrollment listing.
type SlotView struct {
	models.Schedule
	RemainingSeats int  `json:"cuposRestantes"`
	Pending        bool `json:"enProceso"`
}

// EventView is an activity row of the enrollment listing.
type EventView struct {
	ActivityID     int        `json:"idActividad"`
	OrganizationID int        `json:"idOrganizacion"`
	Name           string     `json:"nombreEvento"`
	Organization   string     `json:"organizacion"`
	Coordinator    string     `json:"nombreCoordinador"`
	Place          string     `json:"lugar"`
	Seats          int        `json:"cupo"`
	Registered     bool       `json:"usuarioInscrito"`
	Slots          []SlotView `json:"horarios"`
}

// organizationOf returns the owning organization id of an activity.
func organizationOf(a models.Activity) int {
	if a.OrganizationID != 0 {
		return a.OrganizationID
	}
	if a.Organization != nil {
		return a.Organization.ID
	}
	return 0
}

// Events returns the listing in load order with the reconciled state.
func (r *Reconciler) Events() []EventView {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EventView, 0, len(r.order))
	for _, id := range r.order {
		a := r.activities[id]
		ev := EventView{
			ActivityID:     a.ID,
			OrganizationID: organizationOf(a),
			Name:           a.Name,
			Seats:          a.Seats,
			Slots:          make([]SlotView, 0, len(a.Schedules)),
		}
		if a.Organization != nil {
			ev.Organization = a.Organization.Name
		}
		if a.Creator != nil {
			ev.Coordinator = a.Creator.Username
		}
		if a.Location != nil {
			ev.Place = a.Location.Address
		}
		for _, s := range a.Schedules {
			k := Key{ActivityID: a.ID, SlotID: s.ID}
			s.UserEnrolled = r.registered[k]
			_, pending := r.inflight[k]
			ev.Slots = append(ev.Slots, SlotView{Schedule: s, RemainingSeats: r.seats[k], Pending: pending})
			if s.UserEnrolled {
				ev.Registered = true
			}
		}
		out = append(out, ev)
	}
	return out
}
