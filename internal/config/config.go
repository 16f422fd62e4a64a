// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvProduction is the CATALOG_ENV value that hides internal error details
// from API responses.
const EnvProduction = "production"

// Config holds the application configuration loaded from environment variables.
// It is built once at startup and passed to components as read-only values.
type Config struct {
	APIKey         string
	ListenAddr     string
	DBPath         string
	DBMaxOpenConns int
	DBIdleTimeout  time.Duration
	DBQueryTimeout time.Duration
	DBBusyTimeout  time.Duration
	Env            string
	LogLevel       slog.Level
}

// HasAPIKey reports whether an API key was configured. Without one the
// service still starts, but every request is answered with a configuration
// error.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LogValue keeps the API key out of structured logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("listen_addr", c.ListenAddr),
		slog.String("db_path", c.DBPath),
		slog.Int("db_max_open_conns", c.DBMaxOpenConns),
		slog.Duration("db_idle_timeout", c.DBIdleTimeout),
		slog.Duration("db_query_timeout", c.DBQueryTimeout),
		slog.Duration("db_busy_timeout", c.DBBusyTimeout),
		slog.String("env", c.Env),
		slog.String("log_level", c.LogLevel.String()),
		slog.Bool("api_key_configured", c.HasAPIKey()),
	)
}

// Load reads configuration from environment variables and returns a validated Config.
// CATALOG_API_KEY (or the legacy CATALOG_DUMMY_TOKEN) is optional at load time.
// Optional variables with defaults: CATALOG_LISTEN_ADDR (127.0.0.1:3000, or
// :$PORT when only PORT is set), CATALOG_DB_PATH (catalog.db),
// CATALOG_DB_MAX_OPEN_CONNS (10), CATALOG_DB_IDLE_TIMEOUT (30s),
// CATALOG_DB_QUERY_TIMEOUT (30s), CATALOG_DB_BUSY_TIMEOUT (30s),
// CATALOG_ENV (development), CATALOG_LOG_LEVEL (info).
func Load() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("CATALOG_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("CATALOG_DUMMY_TOKEN"))
	}

	listenAddr := "127.0.0.1:3000"
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("PORT has invalid value %q", v)
		}
		listenAddr = ":" + strconv.Itoa(port)
	}
	if v, ok := os.LookupEnv("CATALOG_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "catalog.db"
	if v, ok := os.LookupEnv("CATALOG_DB_PATH"); ok && strings.TrimSpace(v) != "" {
		dbPath = strings.TrimSpace(v)
	}

	maxOpen := 10
	if v, ok := os.LookupEnv("CATALOG_DB_MAX_OPEN_CONNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("CATALOG_DB_MAX_OPEN_CONNS must be a positive integer, got %q", v)
		}
		maxOpen = n
	}

	idleTimeout, err := durationEnv("CATALOG_DB_IDLE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	queryTimeout, err := durationEnv("CATALOG_DB_QUERY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	busyTimeout, err := durationEnv("CATALOG_DB_BUSY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	env := "development"
	if v, ok := os.LookupEnv("CATALOG_ENV"); ok && v != "" {
		env = strings.ToLower(strings.TrimSpace(v))
	}

	level := slog.LevelInfo
	if v, ok := os.LookupEnv("CATALOG_LOG_LEVEL"); ok && v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CATALOG_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		APIKey:         apiKey,
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		DBMaxOpenConns: maxOpen,
		DBIdleTimeout:  idleTimeout,
		DBQueryTimeout: queryTimeout,
		DBBusyTimeout:  busyTimeout,
		Env:            env,
		LogLevel:       level,
	}, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
