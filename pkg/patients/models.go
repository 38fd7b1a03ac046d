package patients

import (
	"time"

	"github.com/optihealth/platform/pkg/common/models"
)

// Patient is the persisted admission record.
type Patient struct {
	ID                string    `gorm:"primaryKey;column:id" json:"id"`
	Name              string    `gorm:"column:name;index" json:"name"`
	Age               int       `gorm:"column:age" json:"age"`
	Gender            string    `gorm:"column:gender" json:"gender"`
	Condition         string    `gorm:"column:condition;index" json:"condition"`
	Zone              string    `gorm:"column:zone;index:idx_zone_risk,priority:1" json:"zone"`
	AdmissionDate     time.Time `gorm:"column:admission_date;type:date;index" json:"admission_date"`
	SystolicBP        int       `gorm:"column:sys_bp" json:"sys_bp"`
	DiastolicBP       int       `gorm:"column:dia_bp" json:"dia_bp"`
	HeartRate         int       `gorm:"column:heart_rate" json:"heart_rate"`
	SpO2              float64   `gorm:"column:spo2" json:"spo2"`
	Temp              float64   `gorm:"column:temp" json:"temp"`
	BMI               float64   `gorm:"column:bmi" json:"bmi"`
	PriorReadmissions int       `gorm:"column:prior_readmissions" json:"prior_readmissions"`
	RiskScore         int       `gorm:"column:risk_score;index" json:"risk_score"`
	RiskLevel         string    `gorm:"column:risk_level;index:idx_zone_risk,priority:2" json:"risk_level"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// Vitals projects the record onto the scoring input.
func (p Patient) Vitals() models.VitalsInput {
	return models.VitalsInput{
		Age:               p.Age,
		Gender:            p.Gender,
		SystolicBP:        p.SystolicBP,
		DiastolicBP:       p.DiastolicBP,
		HeartRate:         p.HeartRate,
		SpO2:              p.SpO2,
		Temp:              p.Temp,
		BMI:               p.BMI,
		PriorReadmissions: p.PriorReadmissions,
	}
}

// Sort orders accepted by List.
const (
	SortRiskDesc = "risk_desc"
	SortRiskAsc  = "risk_asc"
	SortDate     = "date"
)

// ListQuery filters and pages the patient list. RiskLevel "All" disables the
// level filter.
type ListQuery struct {
	Skip      int
	Limit     int
	Search    string
	RiskLevel string
	SortBy    string
}
