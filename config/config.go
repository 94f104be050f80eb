package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Session   SessionConfig
	Reference ReferenceConfig
	Views     ViewsConfig
	I18n      I18nConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:4200)
}

// BackendConfig points at the volunteer REST API the portal talks to.
type BackendConfig struct {
	URL        string // base URL including the /api prefix
	TimeoutSec int
}

// Timeout returns the bounded per-request timeout for backend calls.
func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig selects where session state lives: "redis", "bolt" or "memory".
type StorageConfig struct {
	Driver   string
	BoltPath string
}

// SessionConfig controls the browser session cookie and its idle lifetime.
type SessionConfig struct {
	CookieName  string
	IdleMinutes int
	Secure      bool
}

// IdleTTL is how long session storage survives without activity.
func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}

// ReferenceConfig controls caching of location and catalog lists.
type ReferenceConfig struct {
	CacheMinutes int
}

// TTL returns the reference data cache lifetime.
func (c ReferenceConfig) TTL() time.Duration {
	return time.Duration(c.CacheMinutes) * time.Minute
}

// ViewsConfig controls the lifetime of per-view state (cascades, enrollment views).
type ViewsConfig struct {
	IdleMinutes int
	SweepCron   string
}

// IdleTTL is how long an untouched view survives before the sweeper closes it.
func (c ViewsConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}

// I18nConfig holds the default language for user-facing messages.
type I18nConfig struct {
	DefaultLang string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200"),
		},
		Backend: BackendConfig{
			URL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000/api"), "/"),
			TimeoutSec: getEnvInt("BACKEND_TIMEOUT_SEC", 15),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", "redis")),
			BoltPath: getEnv("BOLT_PATH", "data/sessions.db"),
		},
		Session: SessionConfig{
			CookieName:  getEnv("SESSION_COOKIE_NAME", "portal_session"),
			IdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 60),
			Secure:      getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Reference: ReferenceConfig{
			CacheMinutes: getEnvInt("REFERENCE_CACHE_MINUTES", 30),
		},
		Views: ViewsConfig{
			IdleMinutes: getEnvInt("VIEW_IDLE_MINUTES", 20),
			SweepCron:   getEnv("VIEW_SWEEP_CRON", "*/5 * * * *"),
		},
		I18n: I18nConfig{
			DefaultLang: getEnv("DEFAULT_LANG", "es"),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
