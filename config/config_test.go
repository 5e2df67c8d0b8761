package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at an empty secrets dir and a missing .env so
// the host environment does not leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	for _, key := range []string{
		"SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_PASSWORD", "JWT_SECRET",
		"REDIS_URL", "STORAGE_BACKEND", "S3_BUCKET_NAME", "TOKEN_TTL",
		"RATE_LIMIT_PER_MINUTE", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ENV", "production")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("pw"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "pw", cfg.DBPassword)
}

func TestLoadConfigProductionRequiresSecret(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9999\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("ENV", "test")
	// godotenv never overrides variables that are already set
	require.NoError(t, os.Unsetenv("SERVER_PORT"))
	t.Cleanup(func() { _ = os.Unsetenv("SERVER_PORT") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.ServerPort)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:    Development,
			DBDriver:       DriverSQLite,
			StorageBackend: StorageLocal,
			MediaRoot:      "media",
			TokenTTL:       time.Hour,
		}
	}

	assert.NoError(t, ValidateConfig(base()))

	cfg := base()
	cfg.StorageBackend = StorageS3
	assert.ErrorContains(t, ValidateConfig(cfg), "S3_BUCKET_NAME")

	cfg = base()
	cfg.DBDriver = "mysql"
	assert.ErrorContains(t, ValidateConfig(cfg), "DB_DRIVER")

	cfg = base()
	cfg.Environment = Production
	cfg.DBDriver = DriverPostgres
	err := ValidateConfig(cfg)
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("prod"))
	assert.Equal(t, Test, ParseEnvironment(" TEST "))
	assert.Equal(t, Development, ParseEnvironment(""))
}
