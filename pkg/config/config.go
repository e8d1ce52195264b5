package config

import (
	"errors"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Engine EngineConfig
	Output OutputConfig
	Log    LogConfig
}

type EngineConfig struct {
	MaxFileSizeMB    int
	StrictValidation bool
	BalanceTolerance string // decimal string, e.g. "0.001"; "0" = exact match
}

type OutputConfig struct {
	Format string // json | excel | csv
}

type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Engine: EngineConfig{
			MaxFileSizeMB:    getEnvAsInt("MAX_FILE_SIZE_MB", 10),
			StrictValidation: getEnvAsBool("STRICT_VALIDATION", false),
			BalanceTolerance: getEnv("BALANCE_TOLERANCE", "0"),
		},
		Output: OutputConfig{
			Format: getEnv("OUTPUT_FORMAT", "json"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	switch cfg.Output.Format {
	case "json", "excel", "csv":
	default:
		return nil, errors.New("OUTPUT_FORMAT must be json, excel or csv")
	}

	if cfg.Engine.MaxFileSizeMB < 0 {
		return nil, errors.New("MAX_FILE_SIZE_MB must not be negative")
	}

	return cfg, nil
}

// MaxFileSizeBytes converts the configured limit to bytes; 0 disables it.
func (c *EngineConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
