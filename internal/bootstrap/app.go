// Package bootstrap handles application initialization and lifecycle management
// for the extracurricular service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/profiling"
)

// Start initializes and starts the extracurricular application.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Extracurricular Service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	// Phase 1b: Profiling (each profiler is off unless enabled)
	profiling.StartPprofServer(cfg.Profiling, log)
	profiler, err := profiling.StartPyroscope(cfg.Profiling, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	// Phase 2: Connect to Redis
	redisClient, err := SetupRedis(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			log.Error("Failed to close redis client", logger.Error(closeErr))
		}
	}()

	// Phase 3: Language model provider
	completer, err := SetupCompleter(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to setup llm provider: %w", err)
	}

	// Phase 4: Setup and run HTTP server
	server := SetupHTTPServer(cfg, redisClient, completer, log)

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Extracurricular Service stopped")
	return nil
}
