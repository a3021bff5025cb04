// Package config provides centralized configuration for columnstore.
//
// All configuration values are loaded from environment variables with
// sensible defaults. There is no database- or flag-backed tier here:
// unlike a server process, a column library has exactly one source of
// truth for its tunables at process start.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration values for columnstore.
type Config struct {
	// DataPath is a root directory for column files. store.FileBackend
	// writes under whatever dir its caller passes and does not read this
	// field.
	// Environment: COLUMNSTORE_DATA_PATH
	// Default: "./var/columns"
	DataPath string

	// SQLiteBackend records whether store.SQLiteBackend is wanted instead of
	// store.FileBackend. Nothing in this module reads it: the column
	// encodings' Store/Load always use store.FileBackend.
	// Environment: COLUMNSTORE_SQLITE_BACKEND
	// Default: false
	SQLiteBackend bool

	// SQLitePath is the database file store.SQLiteBackend opens when
	// SQLiteBackend is enabled.
	// Environment: COLUMNSTORE_SQLITE_PATH
	// Default: "./var/columns.db"
	SQLitePath string

	// CompressionThreshold is the minimum serialized payload size, in bytes,
	// before store.FileBackend gzip-compresses it. Below this size the
	// gzip framing overhead outweighs the saving.
	// Environment: COLUMNSTORE_COMPRESSION_THRESHOLD
	// Default: 4096
	CompressionThreshold int

	// LogLevel is the configured logger level name. Load does not apply it;
	// logger.Configure reads the same environment variable itself.
	// Environment: COLUMNSTORE_LOG_LEVEL
	// Default: "info"
	LogLevel string

	// TraceSubsystems is a comma-separated list of logger trace subsystems.
	// Load does not apply it; logger.Configure reads the same environment
	// variable and calls logger.EnableTrace.
	// Environment: COLUMNSTORE_TRACE_SUBSYSTEMS
	// Default: "" (none)
	TraceSubsystems string

	// DiagnosticsAddr is the listen address for diagnostics.Server, when a
	// caller chooses to start it. Not started automatically by this package.
	// Environment: COLUMNSTORE_DIAGNOSTICS_ADDR
	// Default: "127.0.0.1:8099"
	DiagnosticsAddr string
}

// Load builds a Config from the process environment, applying defaults
// for anything unset.
func Load() *Config {
	return &Config{
		DataPath:             getEnv("COLUMNSTORE_DATA_PATH", "./var/columns"),
		SQLiteBackend:        getEnvBool("COLUMNSTORE_SQLITE_BACKEND", false),
		SQLitePath:           getEnv("COLUMNSTORE_SQLITE_PATH", "./var/columns.db"),
		CompressionThreshold: getEnvInt("COLUMNSTORE_COMPRESSION_THRESHOLD", 4096),
		LogLevel:             getEnv("COLUMNSTORE_LOG_LEVEL", "info"),
		TraceSubsystems:      getEnv("COLUMNSTORE_TRACE_SUBSYSTEMS", ""),
		DiagnosticsAddr:      getEnv("COLUMNSTORE_DIAGNOSTICS_ADDR", "127.0.0.1:8099"),
	}
}

// getEnv retrieves a string environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable with a default fallback.
//
// "true" and "1" are true; anything else, including an unset variable,
// is the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
