package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DefaultSecretKey is only acceptable outside production.
const DefaultSecretKey = "dev-secret-key-change-in-production"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	SecretKey              string        `env:"SECRET_KEY,               default=dev-secret-key-change-in-production"`
	SessionTTL             time.Duration `env:"SESSION_TTL,              default=24h"`
	RememberCookieDuration time.Duration `env:"REMEMBER_COOKIE_DURATION, default=8760h"`
	CSRFEnabled            bool          `env:"CSRF_ENABLED,             default=true"`
	MetricsEnabled         bool          `env:"METRICS_ENABLED,          default=true"`

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Mail     MailConfig
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER,    default=sqlite"`
	URL    string `env:"DATABASE_URL, default=app.db"`
	// MongoDB names the database when Driver is mongo and URL is a mongodb:// URI.
	MongoDB string `env:"MONGO_DB, default=starterpack"`
}

type RedisConfig struct {
	// Addr empty disables the Redis cache and session revocation.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type CacheConfig struct {
	DefaultTimeout time.Duration `env:"CACHE_DEFAULT_TIMEOUT, default=300s"`
	KeyPrefix      string        `env:"CACHE_KEY_PREFIX,      default=starterpack:"`
}

type MailConfig struct {
	// Server empty logs outgoing mail instead of sending it.
	Server        string `env:"MAIL_SERVER"`
	Port          int    `env:"MAIL_PORT,           default=587"`
	UseTLS        bool   `env:"MAIL_USE_TLS,        default=true"`
	Username      string `env:"MAIL_USERNAME"`
	Password      string `env:"MAIL_PASSWORD"`
	DefaultSender string `env:"MAIL_DEFAULT_SENDER, default=noreply@starterpack.local"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l; tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that would start a broken or unsafe server.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && (c.SecretKey == "" || c.SecretKey == DefaultSecretKey) {
		errs = append(errs, errors.New("SECRET_KEY must be set in production"))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres, mongo", c.Database.Driver))
	}
	if c.SessionTTL <= 0 || c.RememberCookieDuration <= 0 {
		errs = append(errs, errors.New("SESSION_TTL and REMEMBER_COOKIE_DURATION must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
