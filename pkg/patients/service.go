package patients

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/risk"
)

const defaultPageSize = 50

type Store interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id string) (Patient, error)
	List(ctx context.Context, q ListQuery) ([]Patient, error)
}

type Scorer interface {
	Score(in models.VitalsInput) models.RiskResult
}

type Service struct {
	store     Store
	scorer    Scorer
	pageLimit int
	now       func() time.Time
}

func NewService(store Store, scorer Scorer, pageLimit int) *Service {
	if pageLimit <= 0 {
		pageLimit = 200
	}
	return &Service{store: store, scorer: scorer, pageLimit: pageLimit, now: time.Now}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Patient, error) {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > s.pageLimit {
		q.Limit = s.pageLimit
	}
	out, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if out == nil {
		out = []Patient{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Patient, error) {
	return s.store.Get(ctx, id)
}

// Create admits a patient today. Scores the vitals unless the caller
// supplied a risk score.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Patient, error) {
	if err := req.Validate(); err != nil {
		return Patient{}, err
	}

	p := req.ToModel()
	now := s.now().UTC()
	p.ID = NewPatientID()
	p.AdmissionDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	p.CreatedAt = now

	switch {
	case req.RiskScore != nil:
		p.RiskScore = int(math.Round(*req.RiskScore))
		p.RiskLevel = risk.Level(p.RiskScore)
		if req.RiskLevel != nil && *req.RiskLevel != "" {
			p.RiskLevel = *req.RiskLevel
		}
	case s.scorer != nil:
		in := p.Vitals()
		in.ClinicalNotes = req.ClinicalNotes
		result := s.scorer.Score(in)
		p.RiskScore = result.RiskScore
		p.RiskLevel = result.RiskLevel
	}

	if err := s.store.Create(ctx, &p); err != nil {
		return Patient{}, fmt.Errorf("create patient: %w", err)
	}
	logger.WithFields(map[string]interface{}{
		"patient_id": p.ID,
		"risk_level": p.RiskLevel,
	}).Info("Patient admitted")
	return p, nil
}

// NewPatientID returns a "PAT-" id with seven random digits.
func NewPatientID() string {
	return fmt.Sprintf("PAT-%d", 1_000_000+rand.IntN(9_000_000))
}
