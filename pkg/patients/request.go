package patients

import (
	"errors"
	"strings"
)

const (
	defaultCondition = "General Checkup"
	defaultZone      = "General Ward"
)

var (
	errMissingName   = errors.New("name is required")
	errNegativeAge   = errors.New("age must be non-negative")
	errMissingGender = errors.New("gender is required")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// CreateRequest is the flat admission payload. A missing risk score is
// computed from the vitals.
type CreateRequest struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Condition         string   `json:"condition"`
	Zone              string   `json:"zone"`
	SystolicBP        int      `json:"sys_bp"`
	DiastolicBP       int      `json:"dia_bp"`
	HeartRate         int      `json:"heart_rate"`
	SpO2              float64  `json:"spo2"`
	Temp              float64  `json:"temp"`
	BMI               float64  `json:"bmi"`
	PriorReadmissions int      `json:"prior_readmissions"`
	ClinicalNotes     string   `json:"clinical_notes,omitempty"`
	RiskScore         *float64 `json:"risk_score,omitempty"`
	RiskLevel         *string  `json:"risk_level,omitempty"`
}

func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ValidationError{reason: errMissingName}
	}
	if r.Age < 0 {
		return ValidationError{reason: errNegativeAge}
	}
	if strings.TrimSpace(r.Gender) == "" {
		return ValidationError{reason: errMissingGender}
	}
	return nil
}

// ToModel fills defaults but leaves identity, dates and risk to the service.
func (r CreateRequest) ToModel() Patient {
	p := Patient{
		Name:              strings.TrimSpace(r.Name),
		Age:               r.Age,
		Gender:            r.Gender,
		Condition:         r.Condition,
		Zone:              r.Zone,
		SystolicBP:        r.SystolicBP,
		DiastolicBP:       r.DiastolicBP,
		HeartRate:         r.HeartRate,
		SpO2:              r.SpO2,
		Temp:              r.Temp,
		BMI:               r.BMI,
		PriorReadmissions: r.PriorReadmissions,
	}
	if p.Condition == "" {
		p.Condition = defaultCondition
	}
	if p.Zone == "" {
		p.Zone = defaultZone
	}
	return p
}
