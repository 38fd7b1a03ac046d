package risk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/observability/metrics"
)

const (
	EventRiskScored = "risk.scored"
	eventSource     = "risk-engine"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// PayloadSanitizer scrubs an event payload before it is published.
// *dlp.Detector satisfies it.
type PayloadSanitizer interface {
	Sanitize(data map[string]interface{}) map[string]interface{}
}

type ServiceOption func(*Service)

func WithSanitizer(sanitizer PayloadSanitizer) ServiceOption {
	return func(s *Service) { s.sanitizer = sanitizer }
}

type Service struct {
	engine    *Engine
	publisher EventPublisher
	sanitizer PayloadSanitizer
}

// NewService wires the engine to an optional publisher; nil disables events.
func NewService(engine *Engine, publisher EventPublisher, opts ...ServiceOption) *Service {
	s := &Service{engine: engine, publisher: publisher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict scores the request. Publishing is best effort and never fails the
// prediction.
func (s *Service) Predict(ctx context.Context, req PredictRequest) (models.RiskResult, error) {
	if err := req.Validate(); err != nil {
		return models.RiskResult{}, err
	}
	input := req.ToModel()
	result := s.engine.Score(input)
	metrics.ObservePrediction(result.RiskLevel, result.RiskScore)

	if s.publisher != nil {
		data, err := eventPayload(input, result)
		if err == nil {
			if s.sanitizer != nil {
				data = s.sanitizer.Sanitize(data)
			}
			err = s.publisher.PublishEvent(ctx, EventRiskScored, eventSource, data)
		}
		if err != nil {
			logger.Log.WithError(err).WithField("risk_level", result.RiskLevel).Warn("Failed to publish risk event")
		}
	}
	return result, nil
}

func eventPayload(input models.VitalsInput, result models.RiskResult) (map[string]interface{}, error) {
	in, err := toMap(input)
	if err != nil {
		return nil, err
	}
	out, err := toMap(result)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"input": in, "result": out}, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return m, nil
}
