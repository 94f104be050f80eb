package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var sessionsBucket = []byte("sessions")

// Bolt is a Store backed by a single bbolt file. It keeps sessions across
// restarts on a single node without running Redis.
type Bolt struct {
	db     *bbolt.DB
	logger *zap.Logger
	now    func() time.Time
}

type boltEntry struct {
	Value     string    `json:"v"`
	ExpiresAt time.Time `json:"e,omitempty"`
}

func (e boltEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// NewBolt opens (or creates) the database at path.
func NewBolt(path string, logger *zap.Logger) (*Bolt, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	logger.Info("bolt storage opened", zap.String("path", path))
	return &Bolt{db: db, logger: logger, now: time.Now}, nil
}

func (b *Bolt) Get(_ context.Context, key string) (string, bool, error) {
	var entry boltEntry
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false, err
	}
	if !found || entry.expired(b.now()) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (b *Bolt) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := boltEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = b.now().Add(ttl)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(key), data)
	})
}

func (b *Bolt) Delete(_ context.Context, keys ...string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		for _, k := range keys {
			if err := bucket.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Name identifies the store in sweep logs.
func (b *Bolt) Name() string { return "bolt-storage" }

// Sweep removes expired entries and returns how many were dropped. Entries
// expire on their own ttl, so idle is ignored.
func (b *Bolt) Sweep(now time.Time, _ time.Duration) int {
	removed := 0
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var entry boltEntry
			if json.Unmarshal(v, &entry) != nil || entry.expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		b.logger.Error("bolt sweep", zap.Error(err))
		return 0
	}
	return removed
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
