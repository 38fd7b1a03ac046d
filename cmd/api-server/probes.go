package main

import (
	"context"

	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/database"
	"github.com/optihealth/platform/pkg/common/kafka"
	"github.com/optihealth/platform/pkg/governance"
	"github.com/optihealth/platform/pkg/ml"
)

func dependencyProbes(cfg *config.Config, models *ml.Store) []governance.Probe {
	return []governance.Probe{
		{
			ID: "postgres", Label: "Operational DB", Type: "store", TechStack: "PostgreSQL",
			Description: "Patient admissions, prediction audit log and support tickets.",
			Check: func(ctx context.Context) error {
				db, err := database.GetPostgres()
				if err != nil {
					return err
				}
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
		{
			ID: "redis", Label: "Dashboard Cache", Type: "store", TechStack: "Redis",
			Description: "Short-lived cache of the assembled dashboard payload.",
			Optional:    true,
			Check: func(ctx context.Context) error {
				return database.GetRedis().Ping(ctx).Err()
			},
		},
		{
			ID: "kafka", Label: "Event Bus", Type: "stream", TechStack: "Apache Kafka",
			Description: "risk.scored events feeding the prediction audit service.",
			Optional:    true,
			Check: func(ctx context.Context) error {
				return kafka.Ping(ctx, cfg.KafkaBrokers)
			},
		},
		{
			ID: "model", Label: "Readmission Model", Type: "model", TechStack: "Logistic regression artifact",
			Description: "Trained weights behind the dashboard feature importance.",
			Optional:    true,
			Check: func(context.Context) error {
				_, err := models.Load()
				return err
			},
		},
	}
}
