// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Session backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendCookie = "cookie"
)

// minSessionSecretLen is the minimum HMAC key length for signed session cookies.
const minSessionSecretLen = 32

var (
	// ErrUnknownSessionBackend is returned when SESSION_BACKEND is not recognized.
	ErrUnknownSessionBackend = errors.New("unknown session backend")
	// ErrWeakSessionSecret is returned when the cookie backend has a short secret.
	ErrWeakSessionSecret = errors.New("session secret too short")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis): sessions and rate limits
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionBackend    string        `env:"SESSION_BACKEND" envDefault:"redis"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"tasklist_session"`

	// Rate limiting for /login and /signup submissions, per client IP
	RateLimitAuthEnabled   bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthPerMinute int  `env:"RATE_LIMIT_AUTH_PER_MINUTE" envDefault:"20"`
	RateLimitAuthBurst     int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"5"`

	// Request body size limit in bytes (default 64KB, forms only)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendRedis:
	case SessionBackendCookie:
		if len(c.SessionSecret) < minSessionSecretLen {
			return fmt.Errorf("%w: need at least %d bytes", ErrWeakSessionSecret, minSessionSecretLen)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSessionBackend, c.SessionBackend)
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
