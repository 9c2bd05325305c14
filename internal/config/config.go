// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the config database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() (*Config, error) {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	dataDir := getEnv("BALN_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	port := 8080
	if portStr := os.Getenv("BALN_PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid BALN_PORT %q: %w", portStr, err)
		}
		port = p
	}

	return &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("BALN_LOG_LEVEL", "info"),
		Port:     port,
		DevMode:  getEnv("BALN_DEV_MODE", "false") == "true",
	}, nil
}

// ConfigDBPath returns the path of the config database.
func (c *Config) ConfigDBPath() string {
	return filepath.Join(c.DataDir, "config.db")
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
