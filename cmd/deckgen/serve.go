package main

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/deckgen/internal/adapters/primary/http"
	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

var (
	// Serve command flags
	port            int
	host            string
	providerTimeout int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation HTTP server",
	Long: `Start the HTTP server exposing deck generation endpoints:
POST /generate, GET /providers, GET /health, POST /api/preview and
POST /api/template/inspect.

Example:
  deckgen serve
  deckgen serve --port 3000 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Add command flags - defaults will be overridden by config loading
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().IntVar(&providerTimeout, "provider-timeout", 0, "Per-attempt provider timeout in seconds (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	finalConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateServeConfig(finalConfig); err != nil {
		return err
	}

	compiler := buildCompiler(finalConfig)
	server := httpserver.NewServerWithLogging(compiler, &finalConfig.Server, &finalConfig.Logging)

	ctx := cmd.Context()
	if err := checkPortAvailable(finalConfig.Server.Host, finalConfig.Server.Port); err != nil {
		return err
	}
	if err := server.Start(ctx, finalConfig.Server.Port, finalConfig.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	fmt.Printf("deckgen serving on http://%s:%d\n", finalConfig.Server.Host, finalConfig.Server.Port)

	// Block until the root context is cancelled by an interrupt
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), finalConfig.Server.GetShutdownTimeout())
	defer cancel()
	return server.Stop(shutdownCtx)
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}
	return nil
}

// checkPortAvailable verifies the port can be bound before handing it to
// the server goroutine, so the failure surfaces synchronously.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use or cannot be bound: %w", port, err)
	}
	if err := listener.Close(); err != nil {
		return fmt.Errorf("failed to release port after testing: %w", err)
	}
	return nil
}
