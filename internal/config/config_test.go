package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console_test")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(10485760), cfg.Import.MaxBodyBytes)
	assert.Equal(t, 30.0, cfg.Import.RatePerMinute)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/console_test")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console_test")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console_test")
	t.Setenv("JWT_SECRET", "secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}
