package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"vocabnotes/internal/notes"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverJSONFile = "jsonfile"
)

// Config holds all configuration for the application.
type Config struct {
	StoreDriver     string
	DBPath          string
	JSONStorePath   string
	APIPort         string
	SortLocale      language.Tag
	DefaultCategory notes.Category
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates every value.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DBPath:        getEnv("DB_PATH", "./data/vocabnotes.db"),
		JSONStorePath: getEnv("JSON_STORE_PATH", "./data/notes.json"),
		APIPort:       getEnv("API_PORT", "9000"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	switch cfg.StoreDriver {
	case DriverSQLite, DriverJSONFile:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverJSONFile, cfg.StoreDriver)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	tag, err := language.Parse(getEnv("SORT_LOCALE", "vi"))
	if err != nil {
		return nil, fmt.Errorf("SORT_LOCALE must be a BCP 47 language tag: %w", err)
	}
	cfg.SortLocale = tag

	category, err := notes.ParseCategory(getEnv("DEFAULT_CATEGORY", string(notes.CategoryVocabulary)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_CATEGORY is invalid: %w", err)
	}
	cfg.DefaultCategory = category

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be a duration: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be greater than 0")
	}
	cfg.ShutdownTimeout = timeout

	// Create the data directory for the selected store
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath()), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// StorePath returns the file backing the selected store driver.
func (c *Config) StorePath() string {
	if c.StoreDriver == DriverJSONFile {
		return c.JSONStorePath
	}
	return c.DBPath
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
