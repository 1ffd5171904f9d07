package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/kcluster/internal/config"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/router"
	"github.com/soltixdb/kcluster/internal/services"
	"github.com/soltixdb/kcluster/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("kcluster service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if cfg.IsDevelopment() {
		logger.Debug("Development mode: console logging at debug level")
	}
	if cfg.IsProduction() && !cfg.Auth.Enabled {
		logger.Warn("Production logging profile without API key authentication")
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	if cfg.Clustering.RandomSeed != 0 {
		logger.Info("Random generator pinned", "random_seed", cfg.Clustering.RandomSeed)
	}
	clusterService := services.NewClusterService(logger, cfg.Clustering)

	app := router.New(logger, clusterService, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr,
			"max_points", cfg.Clustering.MaxPoints, "default_seeds", cfg.Clustering.DefaultSeeds)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
