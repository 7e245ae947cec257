package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// minProductionSecretLen is the shortest JWT secret accepted in production.
const minProductionSecretLen = 32

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks cfg against the requirements of env. All problems
// are reported together.
func ValidateConfig(cfg *Config, env Environment) error {
	var errs []error
	fail := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		fail("server_port", fmt.Sprintf("invalid port %q", cfg.ServerPort))
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.DBPath == "" {
			fail("db_path", "required for sqlite")
		}
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
			fail("db_host", "db_host, db_name and db_user are required for postgres")
		}
	default:
		fail("db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.FavoritesBackend {
	case FavoritesMemory, FavoritesSQL:
	case FavoritesRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			fail("redis_host", "redis_host or redis_url is required for the redis favorites backend")
		}
	default:
		fail("favorites_backend", fmt.Sprintf("unsupported backend %q", cfg.FavoritesBackend))
	}

	if cfg.RateLimit < 0 {
		fail("rate_limit", "must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateLimitWindow <= 0 {
		fail("rate_limit_window", "must be positive when rate_limit is set")
	}
	if cfg.TokenTTL <= 0 {
		fail("token_ttl", "must be positive")
	}
	if cfg.MealDBTimeout <= 0 {
		fail("mealdb_timeout", "must be positive")
	}
	if !strings.HasPrefix(cfg.MealDBBaseURL, "http://") && !strings.HasPrefix(cfg.MealDBBaseURL, "https://") {
		fail("mealdb_base_url", "must be an http(s) URL")
	}

	switch {
	case cfg.JWTSecret == "":
		fail("jwt_secret", "required")
	case env == Production && cfg.JWTSecret == DevJWTSecret:
		fail("jwt_secret", "the development secret cannot be used in production")
	case env == Production && len(cfg.JWTSecret) < minProductionSecretLen:
		fail("jwt_secret", fmt.Sprintf("must be at least %d characters in production", minProductionSecretLen))
	}

	return errors.Join(errs...)
}
