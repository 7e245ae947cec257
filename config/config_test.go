package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CI", "ENV", "CONFIG_FILE", "SECRETS_DIR", "JWT_SECRET", "SERVER_PORT", "FAVORITES_BACKEND", "LOG_FORMAT", "ENV_FILE", "MEALDB_BASE_URL", "METRICS_ENABLED"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, FavoritesSQL, cfg.FavoritesBackend)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FAVORITES_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MEALDB_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT", "100")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, FavoritesRedis, cfg.FavoritesBackend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.MealDBTimeout)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT", "lots")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigDotenv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MEALDB_BASE_URL=http://catalog.test\nMETRICS_ENABLED=false\n"), 0o600))
	t.Setenv("ENV_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.test", cfg.MealDBBaseURL)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadConfigMissingDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_port: "7070"
favorites_backend: memory
mealdb_timeout: 2s
log_level: debug
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7171")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7171", cfg.ServerPort)
	assert.Equal(t, FavoritesMemory, cfg.FavoritesBackend)
	assert.Equal(t, 2*time.Second, cfg.MealDBTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigProductionSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	secret := "0123456789abcdef0123456789abcdef"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte(secret+"\n"), 0o600))
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, secret, cfg.JWTSecret)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", t.TempDir())

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	cfg := Defaults()
	cfg.JWTSecret = "x"
	require.NoError(t, ValidateConfig(cfg, Development))

	cfg.ServerPort = "http"
	cfg.FavoritesBackend = "floppy"
	cfg.DBDriver = "oracle"
	err := ValidateConfig(cfg, Development)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_port")
	assert.Contains(t, err.Error(), "favorites_backend")
	assert.Contains(t, err.Error(), "db_driver")

	prod := Defaults()
	prod.JWTSecret = DevJWTSecret
	assert.Error(t, ValidateConfig(prod, Production))
}

func TestGetEnvironment(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
