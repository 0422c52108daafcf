package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FMS_ADDR", "")
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8787", cfg.Addr)
	assert.Equal(t, "./db/migrations", cfg.MigrationsDir)
	assert.Equal(t, "fms-reports", cfg.MinioBucket)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL())
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FMS_ADDR", ":9000")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("FMS_DRAFT_TTL_SECONDS", "60")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("FMS_LOG_FORMAT", " Console ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Minute, cfg.DraftTTL())
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	v := viper.New()
	v.Set("FMS_DRAFT_TTL_SECONDS", -5)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.DraftTTL())
}

func TestLoadFailsOnMalformedValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "duration instead of seconds", key: "FMS_DRAFT_TTL_SECONDS", value: "1h"},
		{name: "non boolean flag", key: "MINIO_USE_SSL", value: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://prod/db")
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Empty(t, cfg.DatabaseURL, "no partial or default configuration is returned")
		})
	}
}
