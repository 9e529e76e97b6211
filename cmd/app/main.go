package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"arbscan/internal/config"
)

// @title Arbitrage Scanner API
// @version 1.0
// @description Multi-source crypto price aggregation and arbitrage detection service.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infow("Arbitrage scanner starting", "port", cfg.Server.Port)

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Startup failed", "error", err)
	}
	if err := app.Run(ctx); err != nil {
		logger.Fatalw("Runtime failure", "error", err)
	}
}
