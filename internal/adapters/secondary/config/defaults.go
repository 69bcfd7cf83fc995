package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("DECKGEN_HOST", "localhost"),
			Port:            getEnvIntOrDefault("DECKGEN_PORT", 8080),
			ReadTimeout:     getEnvIntOrDefault("DECKGEN_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("DECKGEN_WRITE_TIMEOUT", 120),
			ShutdownTimeout: getEnvIntOrDefault("DECKGEN_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("DECKGEN_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Compiler: entities.CompilerConfig{
			ProviderTimeout: getEnvIntOrDefault("DECKGEN_PROVIDER_TIMEOUT", 60),
			MaxAttempts:     getEnvIntOrDefault("DECKGEN_MAX_ATTEMPTS", 3),
			BackoffBase:     getEnvIntOrDefault("DECKGEN_BACKOFF_BASE_MS", 500),
			MaxInputRunes:   getEnvIntOrDefault("DECKGEN_MAX_INPUT_RUNES", 12000),
		},
		Providers: map[string]entities.ProviderConfig{
			string(entities.ProviderOpenAI):    {Model: "gpt-3.5-turbo"},
			string(entities.ProviderAnthropic): {Model: "claude-3-sonnet-20240229"},
			string(entities.ProviderGroq):      {Model: "llama-3.1-8b-instant"},
		},
		Logging: entities.LoggingConfig{
			Level:   getEnvOrDefault("DECKGEN_LOG_LEVEL", "info"),
			Verbose: getEnvBoolOrDefault("DECKGEN_LOG_VERBOSE", false),
		},
	}

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
