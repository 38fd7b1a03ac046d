package governance

import (
	"context"
	"time"

	"github.com/optihealth/platform/pkg/patients"
	"gorm.io/gorm"
)

const systolicBins = `CASE
	WHEN sys_bp < 100 THEN '<100'
	WHEN sys_bp < 120 THEN '100-120'
	WHEN sys_bp < 140 THEN '120-140'
	WHEN sys_bp < 160 THEN '140-160'
	ELSE '>160' END`

// Repository runs governance queries against the patients table.
type Repository struct {
	*patients.Repository
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: patients.NewRepository(db), db: db}
}

func (r *Repository) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&patients.Patient{}).Count(&n).Error
	return n, err
}

func (r *Repository) CountFailing(ctx context.Context, predicate string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&patients.Patient{}).Where(predicate).Count(&n).Error
	return n, err
}

func (r *Repository) FailingIDs(ctx context.Context, predicate string, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&patients.Patient{}).
		Where(predicate).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// SystolicHistogram counts admissions in [from, to) per systolic bin.
func (r *Repository) SystolicHistogram(ctx context.Context, from, to time.Time) (map[string]int, error) {
	var rows []struct {
		Bin   string
		Count int
	}
	err := r.db.WithContext(ctx).Model(&patients.Patient{}).
		Select(systolicBins+" AS bin, COUNT(*) AS count").
		Where("admission_date >= ? AND admission_date < ?", from, to).
		Group("bin").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Bin] = row.Count
	}
	return out, nil
}
