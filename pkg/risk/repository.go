package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/optihealth/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PredictionLog is the audit row written for every risk.scored event.
type PredictionLog struct {
	ID        uuid.UUID         `gorm:"primaryKey;column:id" json:"id"`
	EventID   string            `gorm:"column:event_id;uniqueIndex" json:"event_id"`
	RiskScore int               `gorm:"column:risk_score" json:"risk_score"`
	RiskLevel string            `gorm:"column:risk_level" json:"risk_level"`
	Request   datatypes.JSONMap `gorm:"column:request" json:"request"`
	Response  datatypes.JSONMap `gorm:"column:response" json:"response"`
	ScoredAt  time.Time         `gorm:"column:scored_at" json:"scored_at"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (PredictionLog) TableName() string {
	return "prediction_logs"
}

var errMalformedEvent = errors.New("malformed risk event")

// Repository persists prediction audit logs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PredictionLog{})
}

// RecordEvent stores a risk.scored event. Redelivered events are ignored.
func (r *Repository) RecordEvent(ctx context.Context, event models.Event) error {
	input, ok := event.Data["input"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: missing input", errMalformedEvent)
	}
	result, ok := event.Data["result"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: missing result", errMalformedEvent)
	}

	score, ok := numeric(result["riskScore"])
	if !ok {
		return fmt.Errorf("%w: missing risk score", errMalformedEvent)
	}
	level, _ := result["riskLevel"].(string)
	log := PredictionLog{
		ID:        uuid.New(),
		EventID:   event.ID,
		RiskScore: int(score),
		RiskLevel: level,
		Request:   datatypes.JSONMap(input),
		Response:  datatypes.JSONMap(result),
		ScoredAt:  event.Timestamp,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&log).Error
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Recent returns the most recent prediction logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
