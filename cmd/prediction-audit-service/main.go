package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/database"
	"github.com/optihealth/platform/pkg/common/kafka"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/risk"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	repo := risk.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate prediction log")
	}

	consumer := kafka.NewConsumer(cfg.RiskEventsTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Consume(ctx, risk.AuditHandler(repo))
	}()

	logger.Log.WithFields(map[string]interface{}{
		"topic": cfg.RiskEventsTopic,
		"group": cfg.KafkaGroupID,
	}).Info("Prediction audit service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Log.Info("Shutting down prediction audit service...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Fatal("Consumer error")
		}
	}

	logger.Log.Info("Prediction audit service stopped")
}
