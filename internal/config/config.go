package config

import (
	"os"
	"strconv"

	"immunotrial/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Paths    PathConfig
}

// DatabaseConfig holds data store settings. DSN is either a file path for the
// embedded SQLite store or a postgres:// URL.
type DatabaseConfig struct {
	DSN string
}

// ServerConfig holds dashboard server settings. The dashboard is a local
// tool, so it binds to loopback unless told otherwise.
type ServerConfig struct {
	Host string
	Port string
}

// AnalysisConfig holds statistical settings
type AnalysisConfig struct {
	Alpha            float64
	FrequencyPreview int
}

// PathConfig holds file system paths
type PathConfig struct {
	InputFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Analysis: loadAnalysisConfig(),
		Paths:    loadPathConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		DSN: getEnvOrDefault("DATABASE_URL", "trial.db"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host: getEnvOrDefault("HOST", "127.0.0.1"),
		Port: getEnvOrDefault("PORT", "8050"),
	}
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Alpha:            getEnvFloatOrDefault("ALPHA", 0.05),
		FrequencyPreview: getEnvIntOrDefault("FREQUENCY_PREVIEW", 15),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		InputFile: getEnvOrDefault("INPUT_FILE", "cell-count.csv"),
	}
}

func validateConfig(config *Config) error {
	if config.Database.DSN == "" {
		return errors.ConfigInvalid("database DSN is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("server port must be numeric: " + config.Server.Port)
	}
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("alpha must be strictly between 0 and 1")
	}
	if config.Analysis.FrequencyPreview < 0 {
		return errors.ConfigInvalid("frequency preview row count must be non-negative")
	}
	return nil
}

// Addr returns the host:port the dashboard listens on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
