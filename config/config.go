package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3BucketName   string
	AWSRegion      string

	// Rate limiting for anonymous auth endpoints and uploads, per minute.
	// Zero disables the limiter.
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string

	MigrationsDir string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadConfig creates a new Config instance with values from the environment,
// an optional .env file and Docker secrets.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	env := GetEnvironment()
	cfg := &Config{
		Environment:    env,
		ServerPort:     lookup("SERVER_PORT", "8080"),
		ServerHost:     lookup("SERVER_HOST", "0.0.0.0"),
		AllowedOrigins: splitList(lookup("ALLOWED_ORIGINS", "http://localhost:5173")),

		DBDriver:   strings.ToLower(lookup("DB_DRIVER", DriverPostgres)),
		DBHost:     lookup("DB_HOST", "localhost"),
		DBPort:     lookup("DB_PORT", "5432"),
		DBUser:     lookup("DB_USER", "postgres"),
		DBPassword: lookup("DB_PASSWORD", ""),
		DBName:     lookup("DB_NAME", "recipes"),
		DBSSLMode:  lookup("DB_SSL_MODE", "disable"),
		SQLitePath: lookup("SQLITE_PATH", "recipes.db"),

		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisURL:      lookup("REDIS_URL", ""),

		JWTSecret: lookup("JWT_SECRET", ""),

		StorageBackend: strings.ToLower(lookup("STORAGE_BACKEND", StorageLocal)),
		MediaRoot:      lookup("MEDIA_ROOT", "media"),
		MediaURL:       lookup("MEDIA_URL", "/media"),
		S3BucketName:   lookup("S3_BUCKET_NAME", ""),
		AWSRegion:      lookup("AWS_REGION", ""),

		LogLevel:  lookup("LOG_LEVEL", "info"),
		LogFormat: lookup("LOG_FORMAT", ""),

		MigrationsDir: lookup("MIGRATIONS_DIR", "migrations"),
	}

	var err error
	if cfg.RedisDB, err = lookupInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = lookupInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = lookupDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Local runs get a throwaway signing key; everything else must set one.
	if cfg.JWTSecret == "" && (env == Development || env == Test) {
		cfg.JWTSecret = "insecure-development-secret"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the connection string for the configured PostgreSQL database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// lookup reads a value from the environment, then from the Docker secret
// named after the lower-cased key.
func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return fallback
}

func lookupInt(key string, fallback int) (int, error) {
	raw := lookup(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func lookupDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := lookup(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
