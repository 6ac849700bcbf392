package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	DB        DBConfig
	Segment   SegmentConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"9001"`
	ShutdownTimeout int           `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
}

// StoreConfig selects the offer store backend.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"memory"` // memory | postgres
}

// UsesPostgres reports whether offers are persisted in PostgreSQL.
func (c StoreConfig) UsesPostgres() bool {
	return c.Driver == "postgres"
}

// DBConfig holds database-related configuration.
// Only read when STORE_DRIVER=postgres.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"offer_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// SegmentConfig points at the external user segment service.
type SegmentConfig struct {
	BaseURL string        `envconfig:"SEGMENT_BASE_URL" default:"http://localhost:1080/api/v1"`
	Timeout time.Duration `envconfig:"SEGMENT_TIMEOUT" default:"2s"`
}

// CacheConfig configures the Redis segment cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL   string        `envconfig:"REDIS_URL" default:""`
	SegmentTTL time.Duration `envconfig:"SEGMENT_CACHE_TTL" default:"5m"`
}

// Enabled reports whether a Redis URL was provided.
func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

// RateLimitConfig holds the apply-offer budget: Requests per Window per client.
type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1s"`
	IdleTTL  time.Duration `envconfig:"RATE_LIMIT_IDLE_TTL" default:"10m"`
}

// AuthConfig holds role header handling.
type AuthConfig struct {
	// AnonymousRole is assumed when the role header is absent.
	// Empty means such requests are rejected as unauthenticated.
	AnonymousRole string `envconfig:"AUTH_ANONYMOUS_ROLE" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Requests < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", cfg.RateLimit.Requests)
	}
	if cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.IdleTTL <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_IDLE_TTL must be positive, got %s", cfg.RateLimit.IdleTTL)
	}
	switch cfg.Store.Driver {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	return &cfg, nil
}
