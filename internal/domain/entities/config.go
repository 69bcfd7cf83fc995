package entities

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig              `toml:"server"`
	Compiler  CompilerConfig            `toml:"compiler"`
	Providers map[string]ProviderConfig `toml:"providers"`
	Logging   LoggingConfig             `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Compiler.Validate(); err != nil {
		return fmt.Errorf("compiler config: %w", err)
	}

	for id, pc := range c.Providers {
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("provider %s config: %w", id, err)
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Provider returns the configuration for a provider id, zero value if absent.
func (c *Config) Provider(id string) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[id]
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		// Allow wildcard origin for development
		if origin == "*" {
			continue
		}
		if len(origin) < 7 || (!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://")) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration.
// Generation responses include a full provider round trip, so the default is
// generous compared to an ordinary API server.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// CompilerConfig contains pipeline-level settings
type CompilerConfig struct {
	ProviderTimeout int `toml:"provider_timeout"` // Seconds per provider attempt
	MaxAttempts     int `toml:"max_attempts"`     // Total provider attempts (first call + retries)
	BackoffBase     int `toml:"backoff_base"`     // Initial backoff in milliseconds
	MaxInputRunes   int `toml:"max_input_runes"`  // Source text truncation budget
}

// Validate validates compiler configuration
func (c CompilerConfig) Validate() error {
	if c.ProviderTimeout < 0 {
		return errors.New("provider timeout must be non-negative")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max attempts must be non-negative")
	}
	if c.MaxAttempts > 10 {
		return errors.New("max attempts must not exceed 10")
	}
	if c.BackoffBase < 0 {
		return errors.New("backoff base must be non-negative")
	}
	if c.MaxInputRunes < 0 {
		return errors.New("max input runes must be non-negative")
	}
	return nil
}

// GetProviderTimeout returns the per-attempt provider timeout with default
func (c CompilerConfig) GetProviderTimeout() time.Duration {
	if c.ProviderTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.ProviderTimeout) * time.Second
}

// GetMaxAttempts returns the total attempt bound with default (1 + 2 retries)
func (c CompilerConfig) GetMaxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

// GetBackoffBase returns the initial retry backoff with default
func (c CompilerConfig) GetBackoffBase() time.Duration {
	if c.BackoffBase <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.BackoffBase) * time.Millisecond
}

// GetMaxInputRunes returns the source truncation budget with default
func (c CompilerConfig) GetMaxInputRunes() int {
	if c.MaxInputRunes <= 0 {
		return 12000
	}
	return c.MaxInputRunes
}

// ProviderConfig contains per-provider overrides
type ProviderConfig struct {
	Model           string `toml:"model"`            // Model identifier sent upstream
	Endpoint        string `toml:"endpoint"`         // Override base URL (e.g. a proxy)
	MaxPromptRunes  int    `toml:"max_prompt_runes"` // Provider prompt budget
	MaxOutputTokens int    `toml:"max_output_tokens"`
}

// Validate validates provider configuration
func (p ProviderConfig) Validate() error {
	if p.Endpoint != "" && !strings.HasPrefix(p.Endpoint, "http://") && !strings.HasPrefix(p.Endpoint, "https://") {
		return fmt.Errorf("invalid provider endpoint: %s", p.Endpoint)
	}
	if p.MaxPromptRunes < 0 {
		return errors.New("max prompt runes must be non-negative")
	}
	if p.MaxOutputTokens < 0 {
		return errors.New("max output tokens must be non-negative")
	}
	return nil
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `toml:"level"`   // debug, info, warn, error
	Verbose bool   `toml:"verbose"` // Enable verbose logging
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// Valid levels
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo // Default level
	}
	return LogLevel(l.Level)
}
