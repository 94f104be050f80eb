package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("SESSION_IDLE_MINUTES", "")
	t.Setenv("BACKEND_TIMEOUT_SEC", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://localhost:5000/api" {
		t.Fatalf("backend url = %q", cfg.Backend.URL)
	}
	if got := cfg.Session.IdleTTL(); got != time.Hour {
		t.Fatalf("session idle ttl = %v, want 1h", got)
	}
	if got := cfg.Backend.Timeout(); got != 15*time.Second {
		t.Fatalf("backend timeout = %v, want 15s", got)
	}
}

func TestLoadTrimsBackendSlashAndParsesOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.org/api/")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("STORAGE_DRIVER", "MEMORY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "https://api.example.org/api" {
		t.Fatalf("backend url = %q", cfg.Backend.URL)
	}
	if !cfg.Session.Secure {
		t.Fatal("expected secure cookie")
	}
	if cfg.Redis.DB != 0 {
		t.Fatalf("redis db = %d, want fallback 0", cfg.Redis.DB)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("storage driver = %q", cfg.Storage.Driver)
	}
}

func TestBackendTimeoutFallsBackWhenUnset(t *testing.T) {
	t.Parallel()

	if got := (BackendConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("Timeout() = %v", got)
	}
}
