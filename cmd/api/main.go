package main

import (
	"context"
	"log"

	"github.com/fleetops/fleet-management-backend/internal/api/rest"
	"github.com/fleetops/fleet-management-backend/internal/infrastructure/config"
	"github.com/fleetops/fleet-management-backend/internal/infrastructure/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx := context.Background()
	telConfig := telemetry.DefaultConfig()
	telConfig.ServiceVersion = cfg.Version
	telConfig.Environment = cfg.Environment
	telConfig.Enabled = cfg.Telemetry.Enabled
	telConfig.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	telConfig.SamplingRate = cfg.Telemetry.SampleRate

	provider, err := telemetry.InitializeOpenTelemetry(ctx, telConfig)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	server, err := rest.NewServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
