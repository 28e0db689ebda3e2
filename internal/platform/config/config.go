package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAPIBasePath is the fallback base path for the HTTP API.
const DefaultAPIBasePath = "/api"

// Storage backends for accounts and blogs.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Application configuration
	App AppConfig

	// Session configuration
	Session SessionConfig

	// Sentry configuration
	Sentry SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"SERVER_PORT" envDefault:"3003"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the server address in host:port format
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"bloglist"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"bloglist"`
	Database        string        `env:"POSTGRES_DB" envDefault:"bloglist"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectionString returns the PostgreSQL connection string in URL format
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		int(d.ConnectTimeout.Seconds()),
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD" envDefault:""`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"bloglist"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
}

// Address returns the Redis address in host:port format
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	LogLevel  string `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"APP_LOG_FORMAT" envDefault:"text"` // text or json

	Storage      string `env:"APP_STORAGE" envDefault:"postgres"`     // postgres or memory
	SessionStore string `env:"APP_SESSION_STORE" envDefault:"redis"` // redis or memory

	CacheEnabled bool          `env:"APP_CACHE_ENABLED" envDefault:"true"`
	ListCacheTTL time.Duration `env:"APP_LIST_CACHE_TTL" envDefault:"30s"`

	EnableMetrics      bool     `env:"APP_ENABLE_METRICS" envDefault:"true"`
	APIBasePath        string   `env:"APP_API_BASE_PATH" envDefault:"/api"`
	CORSAllowedOrigins []string `env:"APP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	EnableTestingAPI bool   `env:"APP_ENABLE_TESTING_API" envDefault:"false"`
	AdminToken       string `env:"APP_ADMIN_TOKEN" envDefault:""` // #nosec G117

	AutoMigrate    bool   `env:"APP_AUTO_MIGRATE" envDefault:"false"`
	MigrationsPath string `env:"APP_MIGRATIONS_PATH" envDefault:"file://migrations"`

	BcryptCost int `env:"APP_BCRYPT_COST" envDefault:"10"`

	LoginRateLimitEnabled     bool          `env:"APP_LOGIN_RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimitWindow      time.Duration `env:"APP_LOGIN_RATE_LIMIT_WINDOW" envDefault:"1m"`
	LoginRateLimitMaxRequests int           `env:"APP_LOGIN_RATE_LIMIT_MAX_REQUESTS" envDefault:"10"`
}

// SessionConfig holds login session configuration
type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"session_token"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// SentryConfig holds Sentry configuration
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" envDefault:""`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:""`
	Release     string `env:"SENTRY_RELEASE" envDefault:""`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables into config struct
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// UsesPostgres reports whether accounts and blogs live in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.App.Storage == StoragePostgres
}

// ListCacheEnabled reports whether the ordered blog list is cached in Redis.
// Only shared storage qualifies: in-memory blogs do not outlive the process
// but cached lists would.
func (c *Config) ListCacheEnabled() bool {
	return c.App.CacheEnabled && c.UsesPostgres()
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.App.SessionStore == SessionStoreRedis || c.ListCacheEnabled()
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.App.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid storage: %s (must be postgres or memory)", c.App.Storage)
	}
	switch c.App.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid session store: %s (must be redis or memory)", c.App.SessionStore)
	}

	// Validate database configuration
	if c.UsesPostgres() {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("database max connections (%d) must be >= min connections (%d)",
				c.Database.MaxConns, c.Database.MinConns)
		}
	}

	// Validate Redis configuration
	if c.UsesRedis() {
		if c.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
		if c.Redis.DB < 0 || c.Redis.DB > 15 {
			return fmt.Errorf("invalid redis database: %d (must be 0-15)", c.Redis.DB)
		}
	}

	// Validate app configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.App.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)",
			c.App.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.App.LogFormat] {
		return fmt.Errorf("invalid log format: %s (must be text or json)",
			c.App.LogFormat)
	}

	if c.App.BcryptCost < bcrypt.MinCost || c.App.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid bcrypt cost: %d (must be %d-%d)", c.App.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.ListCacheEnabled() && c.App.ListCacheTTL <= 0 {
		return fmt.Errorf("list cache ttl must be positive")
	}

	if c.App.LoginRateLimitEnabled {
		if c.App.LoginRateLimitWindow <= 0 {
			return fmt.Errorf("login rate limit window must be positive")
		}
		if c.App.LoginRateLimitMaxRequests <= 0 {
			return fmt.Errorf("login rate limit max requests must be positive")
		}
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	return nil
}
