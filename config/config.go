package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START"      envDefault:"true"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS"          envDefault:"25" validate:"min=1,max=500"`

	// Empty REDIS_URL in local falls back to the in-process cache.
	RedisURL string `env:"REDIS_URL" validate:"required_if=Env production,required_if=Env staging"`

	JWTSecret       string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	SessionTTL      time.Duration `env:"SESSION_TTL"       envDefault:"24h" validate:"gt=0"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL"   envDefault:"15m" validate:"gt=0"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"10m" validate:"gt=0"`

	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB"  envDefault:"65536" validate:"min=8192"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS"  envDefault:"3"     validate:"min=1"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"2"     validate:"min=1"`

	ResendAPIKey     string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom       string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`
	ResetLinkBaseURL string `env:"RESET_LINK_BASE_URL" envDefault:"http://localhost:8080" validate:"url"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.ResetLinkBaseURL = strings.TrimRight(cfg.ResetLinkBaseURL, "/")
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
