package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/optihealth/platform/pkg/common/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("patient not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Patient{})
}

func (r *Repository) Create(ctx context.Context, p *Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateBatch inserts patients in chunks of size.
func (r *Repository) CreateBatch(ctx context.Context, patients []Patient, size int) error {
	if len(patients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(patients, size).Error
}

func (r *Repository) Get(ctx context.Context, id string) (Patient, error) {
	var p Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Patient{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) List(ctx context.Context, q ListQuery) ([]Patient, error) {
	tx := r.db.WithContext(ctx).Model(&Patient{})
	if q.Search != "" {
		tx = tx.Where("name ILIKE ?", "%"+q.Search+"%")
	}
	if q.RiskLevel != "" && q.RiskLevel != "All" {
		tx = tx.Where("risk_level = ?", q.RiskLevel)
	}
	switch q.SortBy {
	case SortRiskDesc:
		tx = tx.Order("risk_score DESC")
	case SortRiskAsc:
		tx = tx.Order("risk_score ASC")
	default:
		tx = tx.Order("admission_date DESC")
	}

	var out []Patient
	err := tx.Offset(q.Skip).Limit(q.Limit).Find(&out).Error
	return out, err
}

// All returns every stored patient, for offline training.
func (r *Repository) All(ctx context.Context) ([]Patient, error) {
	var out []Patient
	err := r.db.WithContext(ctx).Order("admission_date ASC").Find(&out).Error
	return out, err
}

// LatestAdmissionDate reports false when no patients are stored.
func (r *Repository) LatestAdmissionDate(ctx context.Context) (time.Time, bool, error) {
	var latest sql.NullTime
	row := r.db.WithContext(ctx).Model(&Patient{}).Select("MAX(admission_date)").Row()
	if err := row.Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("latest admission date: %w", err)
	}
	return latest.Time, latest.Valid, nil
}

// DailyAdmissions groups admissions by calendar day over [from, to].
func (r *Repository) DailyAdmissions(ctx context.Context, from, to time.Time) ([]models.Observation, error) {
	var rows []struct {
		Day   time.Time
		Count int
	}
	err := r.db.WithContext(ctx).Model(&Patient{}).
		Select("date(admission_date) AS day, COUNT(*) AS count").
		Where("admission_date >= ? AND admission_date <= ?", from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily admissions: %w", err)
	}

	out := make([]models.Observation, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Observation{Date: row.Day, Count: row.Count})
	}
	return out, nil
}

func (r *Repository) CountAdmittedSince(ctx context.Context, since time.Time) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Patient{}).Where("admission_date >= ?", since).Count(&n).Error
	return int(n), err
}

// RiskDistribution counts patients per stored risk level, as stored.
func (r *Repository) RiskDistribution(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		RiskLevel string
		Count     int
	}
	err := r.db.WithContext(ctx).Model(&Patient{}).
		Select("COALESCE(risk_level, '') AS risk_level, COUNT(*) AS count").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("risk distribution: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.RiskLevel] += row.Count
	}
	return out, nil
}
