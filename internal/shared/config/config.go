package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Config holds every runtime knob, populated from the environment (and .env when present).
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":9000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`

	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     string `env:"DB_PORT"     envDefault:"5432"`
	DBUser     string `env:"DB_USER"     envDefault:"auction_user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"auction_password"`
	DBName     string `env:"DB_NAME"     envDefault:"harvestbid"`
	DBSSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	SQLitePath     string `env:"SQLITE_PATH"      envDefault:"data/harvestbid.db"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	LockBackend     string        `env:"LOCK_BACKEND"      envDefault:"memory" validate:"oneof=memory redis"`
	RedisAddr       string        `env:"REDIS_ADDR"        envDefault:"localhost:6379"`
	LockTTL         time.Duration `env:"LOCK_TTL"          envDefault:"10s" validate:"gt=0"`
	LockWaitTimeout time.Duration `env:"LOCK_WAIT_TIMEOUT" envDefault:"5s"  validate:"gt=0"`

	ClosePolicy         string `env:"CLOSE_POLICY"         envDefault:"auto_sell" validate:"oneof=auto_sell owner_decision"`
	SweepSchedule       string `env:"SWEEP_SCHEDULE"       envDefault:"@every 1m"`
	RecommendationLimit int    `env:"RECOMMENDATION_LIMIT" envDefault:"6" validate:"min=1,max=100"`
}

// Load reads .env (if present), parses the environment and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// PostgresDSN builds the pgx connection url from the DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
