package main

import (
	"fmt"
	"os"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/config"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/logger"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().
		Str("version", version).
		Str("api", cfg.Backend.BaseURL).
		Str("environment", cfg.App.Environment).
		Msg("Starting BloodBridge web server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
