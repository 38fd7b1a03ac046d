package ml

import (
	"fmt"
	"time"

	"github.com/optihealth/platform/pkg/ml/linear"
)

type Example struct {
	Features []float64
	Positive bool
}

// Train fits the classifier. It needs MinExamples rows covering both classes.
func Train(examples []Example, featureNames []string, opts linear.Options) (Artifact, error) {
	if len(examples) < MinExamples {
		return Artifact{}, fmt.Errorf("%w: %d examples, need %d", ErrInsufficientData, len(examples), MinExamples)
	}

	samples := make([][]float64, 0, len(examples))
	labels := make([]float64, 0, len(examples))
	positives := 0
	for i, ex := range examples {
		if len(ex.Features) != len(featureNames) {
			return Artifact{}, fmt.Errorf("example %d has %d features, want %d", i, len(ex.Features), len(featureNames))
		}
		samples = append(samples, ex.Features)
		if ex.Positive {
			labels = append(labels, 1)
			positives++
		} else {
			labels = append(labels, 0)
		}
	}
	if positives == 0 || positives == len(examples) {
		return Artifact{}, fmt.Errorf("%w: only one class present", ErrInsufficientData)
	}

	weights, metrics := linear.TrainLogistic(samples, labels, opts)
	return Artifact{
		Model: Model{
			Type:         ModelType,
			Algorithm:    AlgorithmLR,
			FeatureNames: append([]string(nil), featureNames...),
			Weights:      weights,
		},
		Metrics:   metrics,
		TrainedAt: time.Now().UTC(),
	}, nil
}
