package locations

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/voluntariado/portal/internal/backend"
)

// gatedResolver answers each level from a table; provinces of a country listed
// in gates block until the gate is closed.
type gatedResolver struct {
	mu        sync.Mutex
	provinces map[int][]Option
	gates     map[int]chan struct{}
	fail      map[Level]bool
	calls     []Level
}

func (r *gatedResolver) record(l Level) {
	r.mu.Lock()
	r.calls = append(r.calls, l)
	r.mu.Unlock()
}

func (r *gatedResolver) Countries(ctx context.Context) ([]Option, error) {
	r.record(Country)
	return opts(1, 2), nil
}

func (r *gatedResolver) Provinces(ctx context.Context, country int) ([]Option, error) {
	r.record(Province)
	if gate, ok := r.gates[country]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	failing := r.fail[Province]
	r.mu.Unlock()
	if failing {
		return nil, errors.New("backend down")
	}
	return r.provinces[country], nil
}

func (r *gatedResolver) Cantons(ctx context.Context, country, province int) ([]Option, error) {
	r.record(Canton)
	return opts(70), nil
}

func (r *gatedResolver) Districts(ctx context.Context, country, province, canton int) ([]Option, error) {
	r.record(District)
	return opts(700), nil
}

func settle(t *testing.T, c *Cascade) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s := c.Settle(ctx)
	if ctx.Err() != nil {
		t.Fatal("cascade did not settle")
	}
	return s
}

func TestCascadeDiscardsSlowStaleFetch(t *testing.T) {
	t.Parallel()

	slow := make(chan struct{})
	r := &gatedResolver{
		provinces: map[int][]Option{1: opts(10, 11), 2: opts(20)},
		gates:     map[int]chan struct{}{1: slow},
	}
	c := NewCascade(context.Background(), r, nil)
	defer c.Close()
	settle(t, c)

	if _, err := c.Select(Country, 1); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	if _, err := c.Select(Country, 2); err != nil {
		t.Fatalf("select 2: %v", err)
	}
	close(slow)

	s := settle(t, c)
	got := s.Levels[Province].Options
	if len(got) != 1 || got[0].ID != 20 {
		t.Fatalf("province options = %+v, want the list of country 2", got)
	}
}

func TestCascadeValidatesSelections(t *testing.T) {
	t.Parallel()

	c := NewCascade(context.Background(), &gatedResolver{provinces: map[int][]Option{1: opts(10)}}, nil)
	defer c.Close()
	settle(t, c)

	if _, err := c.Select(Province, 10); !errors.Is(err, ErrDisabled) {
		t.Fatalf("select on disabled level: %v", err)
	}
	if _, err := c.Select(Country, 99); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("select unknown id: %v", err)
	}
}

func TestCascadeFailureAndRetry(t *testing.T) {
	t.Parallel()

	r := &gatedResolver{provinces: map[int][]Option{1: opts(10)}, fail: map[Level]bool{Province: true}}
	c := NewCascade(context.Background(), r, nil)
	defer c.Close()
	settle(t, c)

	if _, err := c.Select(Country, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	s := settle(t, c)
	if s.Levels[Province].Loading || len(s.Levels[Province].Options) != 0 {
		t.Fatalf("province after failure = %+v", s.Levels[Province])
	}
	if s.Levels[Country].Selected != 1 {
		t.Fatal("failure cleared the upstream selection")
	}

	r.mu.Lock()
	r.fail = nil
	r.mu.Unlock()
	if _, err := c.Retry(Province); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s = settle(t, c); len(s.Levels[Province].Options) != 1 {
		t.Fatalf("province after retry = %+v", s.Levels[Province])
	}
}

func TestCascadeCloseCancelsInFlight(t *testing.T) {
	t.Parallel()

	never := make(chan struct{})
	r := &gatedResolver{provinces: map[int][]Option{1: opts(10)}, gates: map[int]chan struct{}{1: never}}
	c := NewCascade(context.Background(), r, nil)
	settle(t, c)
	if _, err := c.Select(Country, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	c.Close()

	if _, err := c.Select(Country, 2); !errors.Is(err, ErrClosed) {
		t.Fatalf("select after close: %v", err)
	}
	settle(t, c)
}

func TestCascadePresetLoadsChain(t *testing.T) {
	t.Parallel()

	r := &gatedResolver{provinces: map[int][]Option{2: opts(7)}}
	c := NewCascade(context.Background(), r, nil)
	defer c.Close()
	if _, err := c.Preset(Chain{2, 7, 70, 700}); err != nil {
		t.Fatalf("preset: %v", err)
	}
	s := settle(t, c)
	if got := s.Selection(); got != (Chain{2, 7, 70, 700}) {
		t.Fatalf("selection = %v", got)
	}
}

type testCreds struct{ token string }

func (c *testCreds) Token() string { return c.token }
func (c *testCreds) Unauthorized(ctx context.Context) {}

// rejectingResolver answers provinces with a 401, running onReject first the
// way a session teardown closes the view before the error comes back.
type rejectingResolver struct {
	mu       sync.Mutex
	token    string
	onReject func()
}

func (r *rejectingResolver) Countries(ctx context.Context) ([]Option, error) {
	return opts(1, 2), nil
}

func (r *rejectingResolver) Provinces(ctx context.Context, country int) ([]Option, error) {
	r.mu.Lock()
	if creds := backend.CredentialsFrom(ctx); creds != nil {
		r.token = creds.Token()
	}
	r.mu.Unlock()
	if r.onReject != nil {
		r.onReject()
	}
	return nil, &backend.StatusError{Status: http.StatusUnauthorized, Authenticated: true}
}

func (r *rejectingResolver) Cantons(ctx context.Context, country, province int) ([]Option, error) {
	return nil, nil
}

func (r *rejectingResolver) Districts(ctx context.Context, country, province, canton int) ([]Option, error) {
	return nil, nil
}

func TestCascadeRejectedFetchClearsLoadingAfterTeardown(t *testing.T) {
	t.Parallel()

	r := &rejectingResolver{}
	c := NewCascade(backend.WithCredentials(context.Background(), &testCreds{token: "first"}), r, nil)
	settle(t, c)
	c.Bind(backend.WithCredentials(context.Background(), &testCreds{token: "second"}))
	r.onReject = c.Close

	if _, err := c.Select(Country, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.Snapshot().Levels[Province].Loading {
		if time.Now().After(deadline) {
			t.Fatal("province still loading after a rejected fetch")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !c.SessionExpired() {
		t.Fatal("expected the cascade to report an expired session")
	}
	s := c.Snapshot()
	if s.Levels[Province].Options == nil || len(s.Levels[Province].Options) != 0 {
		t.Fatalf("province = %+v, want an empty list", s.Levels[Province])
	}
	if s.Levels[Country].Selected != 1 {
		t.Fatalf("country selection = %d, must survive the failure", s.Levels[Country].Selected)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token != "second" {
		t.Fatalf("fetch ran with token %q, want the latest bound one", r.token)
	}
}
