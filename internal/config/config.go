package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// RateLimits holds per endpoint-class request thresholds for one window.
type RateLimits struct {
	Window   time.Duration
	Register int
	Token    int
	General  int
}

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port               string
	DatabaseURL        string
	StorageDriver      string
	JWTSecret          string
	JWTIssuer          string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RateLimits         RateLimits
	PasswordMinEntropy float64
	CORSOrigins        []string
	LogLevel           string
	LogFormat          string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "accounts-backend"),
		AccessTTL:     minutes("JWT_ACCESS_TTL_MINUTES", 180),
		RefreshTTL:    minutes("JWT_REFRESH_TTL_MINUTES", 24*60),
		RateLimits: RateLimits{
			Window:   time.Duration(positiveInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
			Register: positiveInt("RATE_LIMIT_REGISTER", 10),
			Token:    positiveInt("RATE_LIMIT_TOKEN", 5),
			General:  positiveInt("RATE_LIMIT_GENERAL", 60),
		},
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:    strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:   strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "json")),
	}

	if raw := strings.TrimSpace(os.Getenv("PASSWORD_MIN_ENTROPY")); raw != "" {
		if bits, err := strconv.ParseFloat(raw, 64); err == nil && bits > 0 {
			cfg.PasswordMinEntropy = bits
		}
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func minutes(key string, def int) time.Duration {
	return time.Duration(positiveInt(key, def)) * time.Minute
}

func positiveInt(key string, def int) int {
	if n, err := strconv.Atoi(fallback(os.Getenv(key), "")); err == nil && n > 0 {
		return n
	}
	return def
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
