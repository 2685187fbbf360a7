// Package config provides centralized configuration for the Brick server.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all server configuration values.
type Config struct {
	Port           string     // HTTP server port (e.g., ":3000")
	ConfigPath     string     // Path to the JSON file holding the active database path
	MaxRequestBody int64      // Maximum request body size in bytes
	RequestTimeout int        // Request timeout in seconds
	DefaultLimit   int        // Page size when a list request omits limit
	CORSOrigins    []string   // Allowed CORS origins ("*" allows all, empty disables CORS)
	APIKey         string     // API key for authentication (empty disables auth)
	LogLevel       slog.Level // Minimum level written by tools.Logger
}

// Cfg is the global configuration instance, loaded at startup.
var Cfg Config

func init() {
	// Load .env file before reading config (ignore error if file doesn't exist)
	godotenv.Load()
	Cfg = Load()
}

// LoadEnvFile loads variables from the given .env files and rebuilds Cfg.
// Variables already present in the environment are not overridden.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return err
	}
	Cfg = Load()
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	maxBody := int64(8 << 20) // documents are synced whole
	if val := os.Getenv("BRICK_MAX_REQUEST_BODY"); val != "" {
		if b, err := strconv.ParseInt(val, 10, 64); err == nil && b > 0 {
			maxBody = b
		}
	}

	requestTimeout := 30
	if val := os.Getenv("BRICK_REQUEST_TIMEOUT"); val != "" {
		if t, err := strconv.Atoi(val); err == nil && t > 0 {
			requestTimeout = t
		}
	}

	defaultLimit := 100
	if val := os.Getenv("BRICK_DEFAULT_LIMIT"); val != "" {
		if l, err := strconv.Atoi(val); err == nil && l >= 0 {
			defaultLimit = l
		}
	}

	corsOrigins := []string{"*"}
	if val, ok := os.LookupEnv("BRICK_CORS_ORIGINS"); ok {
		corsOrigins = nil
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return Config{
		Port:           getEnv("PORT", ":3000"),
		ConfigPath:     getEnv("BRICK_CONFIG_PATH", "config.json"),
		MaxRequestBody: maxBody,
		RequestTimeout: requestTimeout,
		DefaultLimit:   defaultLimit,
		CORSOrigins:    corsOrigins,
		APIKey:         os.Getenv("BRICK_API_KEY"),
		LogLevel:       parseLevel(os.Getenv("BRICK_LOG_LEVEL")),
	}
}

func parseLevel(val string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(val)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// getEnv returns the environment variable value or a default if not set.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
