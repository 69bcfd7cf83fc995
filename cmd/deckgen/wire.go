package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckgen/internal/adapters/secondary/config"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/export"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/parser"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/pptx"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/provider"
	"github.com/fredcamaral/deckgen/internal/adapters/secondary/template"
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
	"github.com/fredcamaral/deckgen/internal/domain/services"
)

// buildCompiler wires the full pipeline from configuration.
func buildCompiler(cfg *entities.Config) ports.CompilerService {
	clock := ports.NewRealTimeProvider()
	return services.NewCompilerService(
		services.NewPromptBuilder(cfg.Compiler.GetMaxInputRunes()),
		provider.NewRegistry(cfg),
		parser.NewOutlineParser(),
		template.NewSource(),
		services.NewTemplateBinder(),
		pptx.NewRenderer(clock),
		export.NewPreviewRenderer(),
		clock,
		cfg,
	)
}

// loadConfig loads configuration with the precedence CLI flags > local
// config > global config > defaults. Local config is looked up in the
// working directory.
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	svc := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	return svc.LoadConfig(context.Background(), cwd, collectFlags(cmd))
}

// collectFlags gathers the flag overrides the merger understands. Only
// flags the user actually set are passed through.
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("port") {
		if v, err := cmd.Flags().GetInt("port"); err == nil {
			flags["port"] = v
		}
	}
	if cmd.Flags().Changed("host") {
		if v, err := cmd.Flags().GetString("host"); err == nil {
			flags["host"] = v
		}
	}
	if cmd.Flags().Changed("provider-timeout") {
		if v, err := cmd.Flags().GetInt("provider-timeout"); err == nil {
			flags["provider-timeout"] = v
		}
	}
	if cmd.Flags().Changed("verbose") {
		if v, err := cmd.Flags().GetBool("verbose"); err == nil {
			flags["verbose"] = v
		}
	}
	return flags
}
