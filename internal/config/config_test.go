package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:              5555,
		HTTPPort:          8080,
		DatabaseURL:       "postgres://localhost/gcm",
		RedisURL:          "redis://localhost:6379",
		LogLevel:          "info",
		SweepIntervalSecs: 120,
		ExpiryWarningDays: 3,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gcm")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5555, cfg.Port)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 120, cfg.SweepIntervalSecs)
	assert.Equal(t, 3, cfg.ExpiryWarningDays)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers the restore; the variables must be absent, not
	// merely empty, for the required check to trip.
	t.Setenv("DATABASE_URL", "x")
	t.Setenv("REDIS_URL", "x")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	require.NoError(t, os.Unsetenv("REDIS_URL"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("port collision", func(t *testing.T) {
		cfg := validConfig()
		cfg.HTTPPort = cfg.Port
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad database url", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseURL = "mysql://localhost/gcm"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgresql scheme accepted", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseURL = "postgresql://localhost/gcm"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive sweep interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.SweepIntervalSecs = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive warning days", func(t *testing.T) {
		cfg := validConfig()
		cfg.ExpiryWarningDays = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestAddrs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, ":5555", cfg.Addr())
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "2m0s", cfg.SweepInterval().String())
}
