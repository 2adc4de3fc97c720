package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarryfs/quarry/internal/api"
	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/config"
	"github.com/quarryfs/quarry/pkg/staging"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the quarry server",
	Long: `Start the quarry server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/quarry/config.yaml.

Examples:
  # Start with the default config file
  quarry start

  # Start with custom config file
  quarry start --config /etc/quarry/config.yaml

  # Start with environment variable overrides
  QUARRY_LOGGING_LEVEL=DEBUG quarry start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Quarry - Asset upload and ingestion service")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics (if enabled)
	metricsResult, err := config.InitializeMetrics(cfg)
	if err != nil {
		return err
	}

	// Open the catalog store
	store, err := config.NewCatalogStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Catalog store close error", "error", err)
		}
	}()
	logger.Info("Catalog store opened", "backend", cfg.Catalog.Backend)

	// Make sure every configured volume has a root folder
	if err := config.EnsureVolumeRoots(ctx, store, cfg); err != nil {
		return err
	}

	// Set up the staging area for incoming files
	stager, err := staging.NewStager(cfg.Staging.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize staging area: %w", err)
	}
	logger.Info("Staging area ready", "dir", cfg.Staging.Dir)

	// Build the asset fields
	registry, err := config.NewFieldRegistry(cfg, store, stager)
	if err != nil {
		return err
	}
	logger.Info("Asset fields registered", "count", registry.Len(), "handles", registry.Handles())

	// Start the metrics server if enabled
	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error", "error", err)
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Create and start the API server
	apiServer := api.NewServer(cfg.API, registry, store)
	logger.Info("API server configured", "port", cfg.API.Port)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for the server to shut down gracefully
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", "error", err)
				return err
			}
			logger.Info("Server stopped gracefully")
		case <-time.After(cfg.ShutdownTimeout):
			logger.Error("Shutdown timed out", "timeout", cfg.ShutdownTimeout)
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
