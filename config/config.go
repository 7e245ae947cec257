package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret signs tokens outside production when no secret is provided.
const DevJWTSecret = "mealquest-dev-secret"

// Favorites storage backends.
const (
	FavoritesMemory = "memory"
	FavoritesRedis  = "redis"
	FavoritesSQL    = "sql"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string   `yaml:"server_port"`
	ServerHost  string   `yaml:"server_host"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Database configuration
	DBDriver   string `yaml:"db_driver"`
	DBPath     string `yaml:"db_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	// FavoritesBackend selects where favorite sets are persisted.
	FavoritesBackend string `yaml:"favorites_backend"`

	// JWT configuration
	JWTSecret string        `yaml:"-"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Recipe catalog
	MealDBBaseURL       string        `yaml:"mealdb_base_url"`
	MealDBTimeout       time.Duration `yaml:"mealdb_timeout"`
	MealDBRatePerSecond float64       `yaml:"mealdb_rate_per_second"`
	MealDBBurst         int           `yaml:"mealdb_burst"`

	// Per-identity request limit; zero disables it. Requires Redis.
	RateLimit       int           `yaml:"rate_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		ServerPort:          "8080",
		ServerHost:          "0.0.0.0",
		CORSOrigins:         []string{"http://localhost:8081", "http://localhost:19006"},
		DBDriver:            DriverSQLite,
		DBPath:              "mealquest.db",
		DBHost:              "localhost",
		DBPort:              "5432",
		DBUser:              "postgres",
		DBName:              "mealquest",
		DBSSLMode:           "disable",
		RedisHost:           "localhost",
		RedisPort:           "6379",
		FavoritesBackend:    FavoritesSQL,
		TokenTTL:            24 * time.Hour,
		MealDBBaseURL:       "https://www.themealdb.com/api/json/v1/1",
		MealDBTimeout:       10 * time.Second,
		MealDBRatePerSecond: 5,
		MealDBBurst:         5,
		RateLimitWindow:     time.Minute,
		LogLevel:            "info",
		LogFormat:           "text",
		MetricsEnabled:      true,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE), environment variables and, in production, Docker secrets.
// Later sources win. A dotenv file (ENV_FILE, or ./.env when present) is
// read first and never overrides variables already set in the process.
func LoadConfig() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	env := GetEnvironment()
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	switch env {
	case Production:
		loadSecrets(cfg)
		if cfg.LogFormat == "text" && os.Getenv("LOG_FORMAT") == "" {
			cfg.LogFormat = "json"
		}
	case Development, Test, CI:
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = DevJWTSecret
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg, env); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ServerAddr is the listen address.
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether any Redis endpoint is configured for a
// component that needs one.
func (c *Config) RedisEnabled() bool {
	return c.FavoritesBackend == FavoritesRedis || c.RateLimit > 0
}

func loadDotenv() error {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return godotenv.Load(path)
	}
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_PORT":       &cfg.ServerPort,
		"SERVER_HOST":       &cfg.ServerHost,
		"DB_DRIVER":         &cfg.DBDriver,
		"DB_PATH":           &cfg.DBPath,
		"DB_HOST":           &cfg.DBHost,
		"DB_PORT":           &cfg.DBPort,
		"DB_USER":           &cfg.DBUser,
		"DB_PASSWORD":       &cfg.DBPassword,
		"DB_NAME":           &cfg.DBName,
		"DB_SSL_MODE":       &cfg.DBSSLMode,
		"REDIS_HOST":        &cfg.RedisHost,
		"REDIS_PORT":        &cfg.RedisPort,
		"REDIS_PASSWORD":    &cfg.RedisPassword,
		"REDIS_URL":         &cfg.RedisURL,
		"FAVORITES_BACKEND": &cfg.FavoritesBackend,
		"JWT_SECRET":        &cfg.JWTSecret,
		"MEALDB_BASE_URL":   &cfg.MealDBBaseURL,
		"LOG_LEVEL":         &cfg.LogLevel,
		"LOG_FORMAT":        &cfg.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var errs []error
	durations := map[string]*time.Duration{
		"TOKEN_TTL":         &cfg.TokenTTL,
		"MEALDB_TIMEOUT":    &cfg.MealDBTimeout,
		"RATE_LIMIT_WINDOW": &cfg.RateLimitWindow,
	}
	for name, dst := range durations {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"REDIS_DB":     &cfg.RedisDB,
		"MEALDB_BURST": &cfg.MealDBBurst,
		"RATE_LIMIT":   &cfg.RateLimit,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			*dst = n
		}
	}

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("METRICS_ENABLED: %w", err))
		} else {
			cfg.MetricsEnabled = b
		}
	}

	if v := os.Getenv("MEALDB_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEALDB_RATE_PER_SECOND: %w", err))
		} else {
			cfg.MealDBRatePerSecond = f
		}
	}

	return errors.Join(errs...)
}

// loadSecrets overlays Docker secrets onto cfg. Missing files are skipped.
func loadSecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
	}
	for name, dst := range secrets {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
