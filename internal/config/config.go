package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"5555"`
	HTTPPort          int    `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	RedisURL          string `env:"REDIS_URL,required"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	SweepIntervalSecs int    `env:"SWEEP_INTERVAL_SECONDS" envDefault:"120"`
	ExpiryWarningDays int    `env:"EXPIRY_WARNING_DAYS" envDefault:"3"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSecs) * time.Second
}

func (c *Config) Validate() error {
	if c.Port == c.HTTPPort {
		return fmt.Errorf("PORT and HTTP_PORT must differ (both %d)", c.Port)
	}
	if c.SweepIntervalSecs < 1 {
		return fmt.Errorf("SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.ExpiryWarningDays < 1 {
		return fmt.Errorf("EXPIRY_WARNING_DAYS must be positive")
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
