package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	IdentityMongo = "mongo"
	IdentityDemo  = "demo"

	SessionsRedis  = "redis"
	SessionsMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// ClientSecret signs the client identity cookie.
	ClientSecret string `env:"CLIENT_COOKIE_SECRET"`

	IdentityBackend string `env:"IDENTITY_BACKEND, default=mongo"`
	SessionBackend  string `env:"SESSION_BACKEND,  default=redis"`

	Session SessionConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// TTL bounds how long a session slot and the client cookie live.
	TTL              time.Duration `env:"SESSION_TTL,        default=720h"`
	IdleTTL          time.Duration `env:"SESSION_IDLE_TTL,   default=30m"`
	ResetThrottleTTL time.Duration `env:"RESET_THROTTLE_TTL, default=15m"`
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL,    default=1h"`
	DemoDelay        time.Duration `env:"DEMO_DELAY,         default=1s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=ecivil"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend choices against the dependencies configured
// for them.
func (c *Config) Validate() error {
	var errs []error
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("CLIENT_COOKIE_SECRET is required"))
	}

	switch c.IdentityBackend {
	case IdentityMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("IDENTITY_BACKEND=mongo requires MONGO_URI"))
		}
	case IdentityDemo:
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_BACKEND %q", c.IdentityBackend))
	}

	switch c.SessionBackend {
	case SessionsRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("SESSION_BACKEND=redis requires REDIS_ADDR"))
		}
	case SessionsMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("REDIS_POOL_SIZE must be positive, got %d", c.Redis.PoolSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Production reports whether the service runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == "production"
}
