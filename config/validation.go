package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireJWTSecret  bool
	RequireDBPassword bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI:          {RequireJWTSecret: true},
	Production:  {RequireJWTSecret: true, RequireDBPassword: true},
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Environment]

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if reqs.RequireJWTSecret && cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if reqs.RequireDBPassword && cfg.DBDriver == DriverPostgres && cfg.DBPassword == "" {
		add("DB_PASSWORD", "is required")
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.StorageBackend {
	case StorageLocal:
		if cfg.MediaRoot == "" {
			add("MEDIA_ROOT", "is required for local storage")
		}
	case StorageS3:
		if cfg.S3BucketName == "" {
			add("S3_BUCKET_NAME", "is required for s3 storage")
		}
	default:
		add("STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}

	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.RateLimitPerMinute < 0 {
		add("RATE_LIMIT_PER_MINUTE", "must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
