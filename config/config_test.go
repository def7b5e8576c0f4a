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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "uz", cfg.App.Locale)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Gateway.BaseURL)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_LOCALE", "en")
	t.Setenv("APP_ENV", "production")
	t.Setenv("BACKEND_URL", "http://backend:9000")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/j.db")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.App.Locale)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "http://backend:9000", cfg.Gateway.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
}

func TestLoadReadsDotenvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("WEB_PORT=9191\nAPP_LOCALE=en\n"), 0o600))
	t.Setenv("APP_LOCALE", "uz")
	t.Cleanup(func() { _ = os.Unsetenv("WEB_PORT") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Web.Port)
	assert.Equal(t, "uz", cfg.App.Locale)
}

func TestValidateAggregatesErrors(t *testing.T) {
	t.Setenv("APP_LOCALE", "fr")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BACKEND_URL", "not a url")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_LOCALE")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "BACKEND_URL")
}
