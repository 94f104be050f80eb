package locations

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/backend"
)

var (
	ErrClosed        = errors.New("locations: cascade closed")
	ErrDisabled      = errors.New("locations: level is disabled")
	ErrUnknownOption = errors.New("locations: option not in list")
)

// Cascade runs a State against a Resolver. Fetches run in the background
// with a context cancelled by Close; a fetch whose level is invalidated before
// it returns is cancelled and its result discarded.
type Cascade struct {
	resolver Resolver
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time

	mu       sync.Mutex
	state    State
	creds    backend.Credentials
	expired  bool
	closed   bool
	lastUsed time.Time
	inflight map[Level]context.CancelFunc
	idle     chan struct{}
}

// NewCascade starts a cascade whose fetches run under parent's values (the
// caller's credentials) but not its cancellation: they belong to the view,
// not to the request that opened it. Bind replaces the credentials.
func NewCascade(parent context.Context, resolver Resolver, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	c := &Cascade{
		resolver: resolver,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		inflight: make(map[Level]context.CancelFunc),
		creds:    backend.CredentialsFrom(parent),
	}
	c.mu.Lock()
	c.lastUsed = c.now()
	state, fetch := Start()
	c.apply(state, fetch)
	c.mu.Unlock()
	return c
}

// Bind makes later fetches use the credentials carried by ctx, so they run as
// the session of the latest request rather than the one that opened the view.
func (c *Cascade) Bind(ctx context.Context) {
	c.mu.Lock()
	c.creds = backend.CredentialsFrom(ctx)
	c.expired = false
	c.mu.Unlock()
}

// SessionExpired reports whether a fetch since the last Bind was rejected
// because the session's token is no longer valid.
func (c *Cascade) SessionExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Snapshot returns the current state.
func (c *Cascade) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = c.now()
	return c.state
}

// Select changes the selection at level l. id must be listed at l, or 0 to
// clear the level.
func (c *Cascade) Select(l Level, id int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return State{}, ErrClosed
	}
	c.lastUsed = c.now()
	if !l.valid() || !c.state.Levels[l].Enabled {
		return c.state, ErrDisabled
	}
	if id != 0 && !c.state.Has(l, id) {
		return c.state, ErrUnknownOption
	}
	state, fetch := Select(c.state, l, id)
	c.apply(state, fetch)
	return c.state, nil
}

// Preset loads a saved chain.
func (c *Cascade) Preset(chain Chain) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return State{}, ErrClosed
	}
	c.lastUsed = c.now()
	state, fetch := Preset(c.state, chain)
	c.apply(state, fetch)
	return c.state, nil
}

// Retry reloads level l after a failed fetch.
func (c *Cascade) Retry(l Level) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return State{}, ErrClosed
	}
	c.lastUsed = c.now()
	if !l.valid() || !c.state.Levels[l].Enabled {
		return c.state, ErrDisabled
	}
	state, fetch := Refresh(c.state, l)
	c.apply(state, fetch)
	return c.state, nil
}

// Settle waits until no fetch is in flight, or ctx is done, and returns the
// state at that point.
func (c *Cascade) Settle(ctx context.Context) State {
	c.mu.Lock()
	if len(c.inflight) == 0 || c.closed {
		defer c.mu.Unlock()
		return c.state
	}
	if c.idle == nil {
		c.idle = make(chan struct{})
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
	}
	return c.Snapshot()
}

// LastUsed reports when the cascade was last read or changed.
func (c *Cascade) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Close cancels in-flight fetches and starts no new ones.
func (c *Cascade) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.inflight = map[Level]context.CancelFunc{}
	c.wake()
	c.mu.Unlock()
	c.cancel()
}

// apply installs state and starts fetch. Fetches of levels whose generation
// moved are stale and get cancelled. Callers hold c.mu.
func (c *Cascade) apply(state State, fetch *Fetch) {
	prev := c.state
	c.state = state
	for l, cancel := range c.inflight {
		if prev.Generation(l) != state.Generation(l) || (fetch != nil && fetch.Level == l) {
			cancel()
			delete(c.inflight, l)
		}
	}
	if fetch != nil && !c.closed {
		ctx, cancel := context.WithCancel(c.ctx)
		if c.creds != nil {
			ctx = backend.WithCredentials(ctx, c.creds)
		}
		c.inflight[fetch.Level] = cancel
		go c.run(ctx, cancel, *fetch)
	}
	if len(c.inflight) == 0 {
		c.wake()
	}
}

func (c *Cascade) run(ctx context.Context, cancel context.CancelFunc, f Fetch) {
	defer cancel()
	options, err := Load(ctx, c.resolver, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil && !errors.Is(err, context.Canceled) {
		if apperr.KindOf(apperr.Wrap("", err)) == apperr.KindSessionExpired {
			c.expired = true
		}
		c.logger.Warn("load location list", zap.Stringer("level", f.Level), zap.Ints("chain", f.Chain[:]), zap.Error(err))
	}
	if c.state.Generation(f.Level) != f.Generation {
		c.logger.Debug("discard stale location list", zap.Stringer("level", f.Level))
		return
	}
	// A session teardown may have closed the view already; the level still stops loading.
	delete(c.inflight, f.Level)
	state, next := Resolve(c.state, f, options, err)
	c.apply(state, next)
}

func (c *Cascade) wake() {
	if c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}
