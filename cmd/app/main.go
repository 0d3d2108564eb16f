package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("build application")
	}
	defer app.Close()

	// In-memory state is private to this process, so the worker jobs run here.
	if cfg.Storage.Driver == "memory" {
		if err := app.StartBackground(ctx); err != nil {
			logger.WithError(err).Fatal("start background jobs")
		}
	}

	if err := bootstrap.Run(ctx, app); err != nil {
		logger.WithError(err).Error("server error")
		return
	}
	logger.Info("shutdown complete")
}
