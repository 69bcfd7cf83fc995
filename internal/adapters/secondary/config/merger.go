package config

import (
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	// Start with first config as base
	result := deepCopy(configs[0])

	// Merge subsequent configs
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if timeout, ok := flags["provider-timeout"].(int); ok && timeout > 0 {
		result.Compiler.ProviderTimeout = timeout
	}

	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		result.Compiler.MaxAttempts = attempts
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Compiler config
	if source.Compiler.ProviderTimeout != 0 {
		target.Compiler.ProviderTimeout = source.Compiler.ProviderTimeout
	}
	if source.Compiler.MaxAttempts != 0 {
		target.Compiler.MaxAttempts = source.Compiler.MaxAttempts
	}
	if source.Compiler.BackoffBase != 0 {
		target.Compiler.BackoffBase = source.Compiler.BackoffBase
	}
	if source.Compiler.MaxInputRunes != 0 {
		target.Compiler.MaxInputRunes = source.Compiler.MaxInputRunes
	}

	// Provider configs merge per provider, field by field, so a local file
	// can override just a model without clearing the endpoint.
	for id, sp := range source.Providers {
		if target.Providers == nil {
			target.Providers = make(map[string]entities.ProviderConfig)
		}
		tp := target.Providers[id]
		if sp.Model != "" {
			tp.Model = sp.Model
		}
		if sp.Endpoint != "" {
			tp.Endpoint = sp.Endpoint
		}
		if sp.MaxPromptRunes != 0 {
			tp.MaxPromptRunes = sp.MaxPromptRunes
		}
		if sp.MaxOutputTokens != 0 {
			tp.MaxOutputTokens = sp.MaxOutputTokens
		}
		target.Providers[id] = tp
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	// Boolean fields merge unconditionally; TOML cannot distinguish false
	// from unset.
	target.Logging.Verbose = source.Logging.Verbose
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server: entities.ServerConfig{
			Host:            src.Server.Host,
			Port:            src.Server.Port,
			ReadTimeout:     src.Server.ReadTimeout,
			WriteTimeout:    src.Server.WriteTimeout,
			ShutdownTimeout: src.Server.ShutdownTimeout,
		},
		Compiler: entities.CompilerConfig{
			ProviderTimeout: src.Compiler.ProviderTimeout,
			MaxAttempts:     src.Compiler.MaxAttempts,
			BackoffBase:     src.Compiler.BackoffBase,
			MaxInputRunes:   src.Compiler.MaxInputRunes,
		},
		Logging: entities.LoggingConfig{
			Level:   src.Logging.Level,
			Verbose: src.Logging.Verbose,
		},
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	if src.Providers != nil {
		dst.Providers = make(map[string]entities.ProviderConfig, len(src.Providers))
		for id, pc := range src.Providers {
			dst.Providers[id] = pc
		}
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
