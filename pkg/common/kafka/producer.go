package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/observability/metrics"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType   = "event-type"
	HeaderSource      = "source"
	HeaderRiskLevel   = "risk-level"
	HeaderContentType = "content-type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes models.Event envelopes to a single topic. Writes are
// synchronous; PublishEvent returns once every in-sync replica has the event.
type Producer struct {
	topic  string
	writer messageWriter
	now    func() time.Time
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return newProducer(topic, writer)
}

func newProducer(topic string, w messageWriter) *Producer {
	return &Producer{topic: topic, writer: w, now: time.Now}
}

func (p *Producer) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: p.now().UTC(),
	}

	message, err := newMessage(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, message)
	metrics.ObserveEventPublish(p.topic, err)
	fields := map[string]interface{}{
		"event_id":   event.ID,
		"event_type": eventType,
		"topic":      p.topic,
	}
	if err != nil {
		logger.Log.WithError(err).WithFields(fields).Error("Failed to publish event")
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	logger.Log.WithFields(fields).Debug("Event published")
	return nil
}

// newMessage keys the message by event id and lifts the scored risk level,
// when present, into a header so consumers can filter without decoding.
func newMessage(event models.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventType, Value: []byte(event.Type)},
		{Key: HeaderSource, Value: []byte(event.Source)},
		{Key: HeaderContentType, Value: []byte("application/json")},
	}
	if result, ok := event.Data["result"].(map[string]interface{}); ok {
		if level, ok := result["riskLevel"].(string); ok && level != "" {
			headers = append(headers, kafka.Header{Key: HeaderRiskLevel, Value: []byte(level)})
		}
	}

	return kafka.Message{
		Key:     []byte(event.ID),
		Value:   value,
		Headers: headers,
		Time:    event.Timestamp,
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
