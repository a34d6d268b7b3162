// Package config loads server configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"jobquote/internal/core/security"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Environment string
	Port        string
	LogLevel    string

	// Storage selects the backend: postgres or memory
	Storage        string
	DatabaseURL    string
	DBMaxConns     int
	DBMinConns     int
	MigrateOnStart bool

	JWTSecret   string
	JWTIssuer   string
	JWTTokenTTL time.Duration

	QuoteNumberPrefix string
	DefaultCurrency   string

	ShutdownTimeout time.Duration

	// Policies holds CEL overrides keyed by action, read from POLICY_<ACTION>.
	Policies map[security.Action]string
}

// IsDevelopment reports whether the server runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		Port:              getEnv("APP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Storage:           strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		MigrateOnStart:    getEnvBool("MIGRATE_ON_START", true),
		JWTSecret:         strings.TrimSpace(getEnv("JWT_SECRET", "")),
		JWTIssuer:         getEnv("JWT_ISSUER", "jobquote"),
		JWTTokenTTL:       getEnvDuration("JWT_TOKEN_TTL", 15*time.Minute),
		QuoteNumberPrefix: getEnv("QUOTE_NUMBER_PREFIX", "Q"),
		DefaultCurrency:   strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Policies:          make(map[security.Action]string),
	}

	for _, action := range security.AllActions {
		if expr := strings.TrimSpace(os.Getenv(action.EnvKey())); expr != "" {
			cfg.Policies[action] = expr
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks required settings for the selected storage.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// Secret returns the signing secret, falling back to a fixed key in development.
func (c Config) Secret() string {
	if c.JWTSecret == "" && c.IsDevelopment() {
		return "dev-secret-change-me"
	}
	return c.JWTSecret
}

// Authorizer compiles the default policies and applies overrides.
func (c Config) Authorizer() (*security.CELAuthorizer, error) {
	authz, err := security.NewCELAuthorizer(security.DefaultPolicies())
	if err != nil {
		return nil, err
	}
	for action, expr := range c.Policies {
		if err := authz.SetPolicy(action, expr); err != nil {
			return nil, fmt.Errorf("%s: %w", action.EnvKey(), err)
		}
	}
	return authz, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
