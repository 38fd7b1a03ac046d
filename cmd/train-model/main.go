package main

import (
	"context"
	"flag"
	"time"

	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/database"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/ml"
	"github.com/optihealth/platform/pkg/ml/linear"
	"github.com/optihealth/platform/pkg/patients"
	"github.com/optihealth/platform/pkg/risk"
)

func main() {
	logger.Init()
	cfg := config.Load()

	out := flag.String("out", cfg.ModelArtifactPath, "artifact output path")
	epochs := flag.Int("epochs", 0, "gradient descent epochs (0 uses the default)")
	rate := flag.Float64("learning-rate", 0, "learning rate (0 uses the default)")
	flag.Parse()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rows, err := patients.NewRepository(db).All(ctx)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load patients")
	}

	examples := make([]ml.Example, 0, len(rows))
	for _, p := range rows {
		examples = append(examples, ml.Example{
			Features: risk.FeatureVector(p.Vitals()),
			Positive: p.RiskLevel == risk.LevelHigh || p.RiskLevel == risk.LevelCritical,
		})
	}

	artifact, err := ml.Train(examples, risk.FeatureNames, linear.Options{Epochs: *epochs, LearningRate: *rate})
	if err != nil {
		logger.Log.WithError(err).Fatal("Training failed")
	}
	if err := ml.Save(*out, artifact); err != nil {
		logger.Log.WithError(err).Fatal("Failed to save model artifact")
	}

	logger.Log.WithFields(map[string]interface{}{
		"examples": len(examples),
		"accuracy": artifact.Metrics.Accuracy,
		"path":     *out,
	}).Info("Model trained")

	if len(rows) > 0 {
		p, err := artifact.Predict(risk.FeatureVector(rows[0].Vitals()))
		if err == nil {
			logger.Log.WithFields(map[string]interface{}{
				"patient_id":  rows[0].ID,
				"probability": p,
				"risk_level":  rows[0].RiskLevel,
			}).Info("Sample prediction")
		}
	}
	for _, f := range artifact.FeatureImportance() {
		logger.Log.WithField("feature", f.Feature).WithField("importance", f.Importance).Debug("Feature importance")
	}
}
