package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/email"
	"github.com/Domenick1991/airreservation/internal/kafka"
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

	if cfg.Storage.Driver == "memory" {
		logger.Warn("memory storage is process local; the worker only sees its own state")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("build application")
	}
	defer app.Close()

	if err := app.StartBackground(ctx); err != nil {
		logger.WithError(err).Fatal("start background jobs")
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		sender := email.NewSender(logger)
		go func() {
			if err := consumer.Consume(ctx, kafka.EventHandler(logger, sender.Send)); err != nil {
				logger.WithError(err).Error("notification consumer stopped")
			}
		}()
		logger.WithField("topic", cfg.Kafka.NotificationsTopic).Info("notification consumer started")
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")
}
