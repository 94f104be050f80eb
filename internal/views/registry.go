// Package views keeps the state that belongs to an open view of a browsing
// session (a location form cascade, an enrollment listing) between requests,
// and releases it when the view is left, the session logs out, or the view
// sits idle.
package views

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// View is per-view state with background work to stop on Close.
type View interface {
	Close()
	LastUsed() time.Time
}

type key struct {
	session string
	view    string
}

// Registry holds views of kind T per (session id, view id) (thread-safe).
type Registry[T View] struct {
	name   string
	logger *zap.Logger

	mu    sync.RWMutex
	views map[key]T
}

// NewRegistry creates a registry; name labels its log lines.
func NewRegistry[T View](name string, logger *zap.Logger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry[T]{name: name, logger: logger, views: make(map[key]T)}
}

// Lookup returns the view if it is open.
func (r *Registry[T]) Lookup(sessionID, viewID string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[key{sessionID, viewID}]
	return v, ok
}

// Get returns the open view, creating it with open when there is none.
func (r *Registry[T]) Get(sessionID, viewID string, open func() T) T {
	k := key{sessionID, viewID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[k]; ok {
		return v
	}
	v := open()
	r.views[k] = v
	return v
}

// Replace installs a freshly opened view, closing the one it replaces.
func (r *Registry[T]) Replace(sessionID, viewID string, v T) {
	k := key{sessionID, viewID}
	r.mu.Lock()
	old, ok := r.views[k]
	r.views[k] = v
	r.mu.Unlock()
	if ok {
		old.Close()
	}
}

// Close closes and removes one view.
func (r *Registry[T]) Close(sessionID, viewID string) bool {
	k := key{sessionID, viewID}
	r.mu.Lock()
	v, ok := r.views[k]
	delete(r.views, k)
	r.mu.Unlock()
	if ok {
		v.Close()
	}
	return ok
}

// Drop closes every view of a session and returns how many there were.
func (r *Registry[T]) Drop(sessionID string) int {
	var closing []T
	r.mu.Lock()
	for k, v := range r.views {
		if k.session == sessionID {
			closing = append(closing, v)
			delete(r.views, k)
		}
	}
	r.mu.Unlock()
	for _, v := range closing {
		v.Close()
	}
	if len(closing) > 0 {
		r.logger.Debug("dropped session views", zap.String("registry", r.name), zap.String("session_id", sessionID), zap.Int("count", len(closing)))
	}
	return len(closing)
}

// Sweep closes views unused since before now-idle.
func (r *Registry[T]) Sweep(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)
	var closing []T
	r.mu.Lock()
	for k, v := range r.views {
		if v.LastUsed().Before(cutoff) {
			closing = append(closing, v)
			delete(r.views, k)
		}
	}
	r.mu.Unlock()
	for _, v := range closing {
		v.Close()
	}
	return len(closing)
}

// Len returns the number of open views.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Name returns the registry label.
func (r *Registry[T]) Name() string { return r.name }
