// Package config builds process configuration from environment variables so
// main stays lean. Configuration is loaded once at startup and immutable
// thereafter; any invalid value is fatal at process start.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"helix/pkg/domerr"
)

// Config captures process-level configuration for the identity core.
type Config struct {
	Addr     string
	LogLevel slog.Level

	// Timezone is the fixed reference timezone for all day-window arithmetic.
	// There is no default: an unset timezone is a startup error.
	Timezone string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	// SiloRegistryPath points at the JSON silo registry.
	SiloRegistryPath string

	// SyncSLA bounds every persistence call.
	SyncSLA time.Duration

	// Workers sizes the per-user partitioned event pool.
	Workers int

	// Handshake lockout policy.
	LockoutThreshold int
	LockoutWindow    time.Duration
	LockoutDuration  time.Duration
}

// FromEnv reads configuration from the environment and validates it.
// Errors: CodeConfigInvalid only; callers treat any error as fatal.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:             envOr("HELIX_ADDR", ":8080"),
		LogLevel:         parseLogLevel(os.Getenv("HELIX_LOG_LEVEL")),
		Timezone:         os.Getenv("HELIX_TZ"),
		DatabaseURL:      os.Getenv("HELIX_DATABASE_URL"),
		RedisURL:         os.Getenv("HELIX_REDIS_URL"),
		SiloRegistryPath: os.Getenv("HELIX_SILO_REGISTRY"),
		SyncSLA:          5 * time.Second,
		Workers:          8,
		LockoutThreshold: 5,
		LockoutWindow:    15 * time.Minute,
		LockoutDuration:  15 * time.Minute,
	}

	if brokers := os.Getenv("HELIX_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.SyncSLA, err = durationOr("HELIX_SYNC_SLA", cfg.SyncSLA); err != nil {
		return Config{}, err
	}
	if cfg.LockoutWindow, err = durationOr("HELIX_LOCKOUT_WINDOW", cfg.LockoutWindow); err != nil {
		return Config{}, err
	}
	if cfg.LockoutDuration, err = durationOr("HELIX_LOCKOUT_DURATION", cfg.LockoutDuration); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = intOr("HELIX_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.LockoutThreshold, err = intOr("HELIX_LOCKOUT_THRESHOLD", cfg.LockoutThreshold); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the startup invariants.
func (c Config) Validate() error {
	if c.Timezone == "" {
		return domerr.New(domerr.CodeConfigInvalid, "HELIX_TZ reference timezone is required")
	}
	if c.SiloRegistryPath == "" {
		return domerr.New(domerr.CodeConfigInvalid, "HELIX_SILO_REGISTRY path is required")
	}
	if c.SyncSLA <= 0 {
		return domerr.New(domerr.CodeConfigInvalid, "sync SLA must be positive")
	}
	if c.Workers < 1 {
		return domerr.New(domerr.CodeConfigInvalid, "worker count must be at least 1")
	}
	if c.LockoutThreshold < 1 {
		return domerr.New(domerr.CodeConfigInvalid, "lockout threshold must be at least 1")
	}
	if c.LockoutWindow <= 0 || c.LockoutDuration <= 0 {
		return domerr.New(domerr.CodeConfigInvalid, "lockout window and duration must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, domerr.Newf(domerr.CodeConfigInvalid, "%s must be a duration: %v", key, err)
	}
	return d, nil
}

func intOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domerr.Newf(domerr.CodeConfigInvalid, "%s must be an integer: %v", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
