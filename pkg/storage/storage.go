// Package storage holds the key/value persistence that stands in for the
// browser's session storage: auth token, user id and admin-session pieces,
// plus cached reference lists.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrNotFound is returned by GetJSON when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store with optional per-key expiry.
// A zero ttl means the value does not expire.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Scope returns a Store whose keys live under session:<id>: and whose writes
// expire after ttl unless the caller passes its own.
func Scope(store Store, sessionID string, ttl time.Duration) Store {
	return &scoped{store: store, prefix: "session:" + sessionID + ":", ttl: ttl}
}

type scoped struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.store.Set(ctx, s.prefix+key, value, ttl)
}

func (s *scoped) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.store.Delete(ctx, full...)
}

// GetJSON reads key and unmarshals it into out. It returns ErrNotFound when the
// key is absent.
func GetJSON(ctx context.Context, store Store, key string, out interface{}) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and stores it under key. A nil value, or a nil
// pointer, removes the key.
func SetJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration) error {
	if value == nil || (reflect.ValueOf(value).Kind() == reflect.Pointer && reflect.ValueOf(value).IsNil()) {
		return store.Delete(ctx, key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, string(raw), ttl)
}
