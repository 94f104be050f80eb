// Package registrations keeps a browsing session's view of the activities it
// can enroll in consistent with the backend while enrollments and withdrawals
// are in flight.
package registrations

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/models"
)

// ErrClosed is returned once the view owning the reconciler is gone.
var ErrClosed = errors.New("registrations: view closed")

// Key identifies a schedule slot of an activity.
type Key struct {
	ActivityID int
	SlotID     int
}

// Enroller performs enrollments against the backend.
type Enroller interface {
	Enroll(ctx context.Context, req models.EnrollmentRequest) (Outcome, error)
	Withdraw(ctx context.Context, req models.EnrollmentRequest) (Outcome, error)
}

// Result reports what a Register or Unregister call did. Applied is false
// when the call was a no-op.
type Result struct {
	Key            Key
	Applied        bool
	Registered     bool
	RemainingSeats int
	At             string
	ActivityName   string
}

// Reconciler tracks enrollment state for one listing view.
type Reconciler struct {
	api    Enroller
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	order      []int
	activities map[int]models.Activity
	slots      map[int][]int
	registered map[Key]bool
	seats      map[Key]int
	inflight   map[Key]string
	lastUsed   time.Time
	closed     bool
}

// NewReconciler creates an empty reconciler.
func NewReconciler(api Enroller, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		api:        api,
		logger:     logger,
		now:        time.Now,
		activities: make(map[int]models.Activity),
		slots:      make(map[int][]int),
		registered: make(map[Key]bool),
		seats:      make(map[Key]int),
		inflight:   make(map[Key]string),
	}
	r.lastUsed = r.now()
	return r
}

// Load replaces the listing. Activities without schedules are skipped; a
// schedule counts as registered when the backend says the user is enrolled,
// and every schedule starts with the activity's seat count.
func (r *Reconciler) Load(list []models.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed = r.now()

	r.order = r.order[:0]
	r.activities = make(map[int]models.Activity, len(list))
	r.slots = make(map[int][]int, len(list))
	r.registered = make(map[Key]bool)
	r.seats = make(map[Key]int)

	for _, a := range list {
		if len(a.Schedules) == 0 {
			continue
		}
		if _, dup := r.activities[a.ID]; dup {
			continue
		}
		a.Schedules = sortedSlots(a.Schedules)
		r.order = append(r.order, a.ID)
		r.activities[a.ID] = a
		for _, s := range a.Schedules {
			k := Key{ActivityID: a.ID, SlotID: s.ID}
			r.slots[a.ID] = append(r.slots[a.ID], s.ID)
			r.seats[k] = a.Seats
			if s.UserEnrolled {
				r.registered[k] = true
			}
		}
	}
}

// Activity returns a listed activity.
func (r *Reconciler) Activity(id int) (models.Activity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[id]
	return a, ok
}

// IsRegistered reports whether the slot is marked registered.
func (r *Reconciler) IsRegistered(k Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered[k]
}

// RemainingSeats returns the seats shown for a slot.
func (r *Reconciler) RemainingSeats(k Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats[k]
}

// Pending reports whether a call for the slot is in flight.
func (r *Reconciler) Pending(k Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[k]
	return ok
}

// Register enrolls req.UserID in the slot. It is a no-op when the slot is
// already registered or a call for it is in flight.
func (r *Reconciler) Register(ctx context.Context, req models.EnrollmentRequest) (Result, error) {
	return r.submit(ctx, apperr.OpRegister, req)
}

// Unregister withdraws req.UserID from the slot. It is a no-op when the slot
// is not registered or a call for it is in flight.
func (r *Reconciler) Unregister(ctx context.Context, req models.EnrollmentRequest) (Result, error) {
	return r.submit(ctx, apperr.OpUnregister, req)
}

func (r *Reconciler) submit(ctx context.Context, op string, req models.EnrollmentRequest) (Result, error) {
	if req.UserID <= 0 {
		return Result{}, &apperr.Error{Kind: apperr.KindNoSession, Op: op}
	}
	register := op == apperr.OpRegister
	k := Key{ActivityID: req.ActivityID, SlotID: req.ScheduleID}

	r.mu.Lock()
	r.lastUsed = r.now()
	if r.closed {
		r.mu.Unlock()
		return Result{}, ErrClosed
	}
	if r.registered[k] == register {
		res := r.resultLocked(k)
		r.mu.Unlock()
		return res, nil
	}
	if running, busy := r.inflight[k]; busy {
		res := r.resultLocked(k)
		r.mu.Unlock()
		r.logger.Debug("enrollment already in flight", zap.String("op", op), zap.String("running", running),
			zap.Int("activity_id", k.ActivityID), zap.Int("slot_id", k.SlotID))
		return res, nil
	}
	r.inflight[k] = op
	r.mu.Unlock()

	call := r.api.Enroll
	if !register {
		call = r.api.Withdraw
	}
	out, err := call(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, k)
	if err != nil {
		return Result{}, apperr.Wrap(op, err)
	}

	done := out.Key()
	if !r.closed {
		if register {
			r.registered[done] = true
		} else {
			delete(r.registered, done)
		}
		r.applySeatsLocked(done, out.RemainingSeats)
	}
	res := r.resultLocked(done)
	res.Applied = true
	res.Registered = register
	res.RemainingSeats = out.RemainingSeats
	res.At = out.At
	return res, nil
}

// applySeatsLocked overwrites the seats of every slot of the activity: the
// backend counts seats per activity even though it answers per slot.
func (r *Reconciler) applySeatsLocked(k Key, seats int) {
	r.seats[k] = seats
	for _, slot := range r.slots[k.ActivityID] {
		r.seats[Key{ActivityID: k.ActivityID, SlotID: slot}] = seats
	}
	if a, ok := r.activities[k.ActivityID]; ok {
		a.Seats = seats
		r.activities[k.ActivityID] = a
	}
}

func (r *Reconciler) resultLocked(k Key) Result {
	return Result{
		Key:            k,
		Registered:     r.registered[k],
		RemainingSeats: r.seats[k],
		ActivityName:   r.activities[k.ActivityID].Name,
	}
}

// Close marks the view gone; late responses are no longer applied.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// LastUsed returns when the view was last touched.
func (r *Reconciler) LastUsed() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsed
}

var slotLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func slotTime(s models.Schedule) time.Time {
	v := s.StartsAt
	if v == nil || *v == "" {
		v = s.Date
	}
	if v == nil {
		return time.Time{}
	}
	for _, layout := range slotLayouts {
		if t, err := time.Parse(layout, *v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sortedSlots(in []models.Schedule) []models.Schedule {
	out := make([]models.Schedule, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return slotTime(out[i]).Before(slotTime(out[j]))
	})
	return out
}
