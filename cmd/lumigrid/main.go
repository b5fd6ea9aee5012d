// Package main is the entry point for the lumigrid output daemon.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lumigrid/lumigrid/internal/app"
	"github.com/lumigrid/lumigrid/internal/config"
	"github.com/lumigrid/lumigrid/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== lumigrid ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Create and run the app
	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	// Run the output loop
	if err := a.Run(); err != nil {
		logger.Error("output loop error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("stopped normally")
}
