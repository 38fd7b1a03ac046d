package governance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule categories.
const (
	TypeCompleteness = "Completeness"
	TypeValidity     = "Validity"
	TypeConsistency  = "Consistency"
	TypeTimeliness   = "Timeliness"
)

// QualityRule is a data quality assertion over the patients table. Predicate
// is a SQL condition selecting the rows that violate it.
type QualityRule struct {
	ID          string  `yaml:"id" json:"id"`
	Asset       string  `yaml:"asset" json:"asset"`
	Column      string  `yaml:"column" json:"column"`
	Name        string  `yaml:"name" json:"ruleName"`
	Type        string  `yaml:"type" json:"ruleType"`
	Threshold   float64 `yaml:"threshold" json:"threshold"`
	Description string  `yaml:"description" json:"description"`
	Predicate   string  `yaml:"predicate" json:"-"`
}

type RuleSet struct {
	Rules []QualityRule `yaml:"rules" json:"rules"`
}

func LoadQualityRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultQualityRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultQualityRules(), fmt.Errorf("read quality rules: %w", err)
	}

	var set RuleSet
	if err := yaml.Unmarshal(content, &set); err != nil {
		return RuleSet{}, fmt.Errorf("parse quality rules: %w", err)
	}
	if len(set.Rules) == 0 {
		return RuleSet{}, errors.New("no quality rules configured")
	}
	for i, r := range set.Rules {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Predicate) == "" {
			return RuleSet{}, fmt.Errorf("quality rule %d needs an id and a predicate", i)
		}
		if r.Threshold <= 0 || r.Threshold > 100 {
			return RuleSet{}, fmt.Errorf("quality rule %s: threshold must be in (0, 100]", r.ID)
		}
	}
	return set, nil
}

func DefaultQualityRules() RuleSet {
	return RuleSet{Rules: []QualityRule{
		{
			ID: "DQ-101", Asset: "patients", Column: "name", Name: "not_blank", Type: TypeCompleteness,
			Threshold: 100, Description: "Every admitted patient has a name.",
			Predicate: "name IS NULL OR TRIM(name) = ''",
		},
		{
			ID: "DQ-102", Asset: "patients", Column: "sys_bp", Name: "range_check", Type: TypeValidity,
			Threshold: 99, Description: "Systolic pressure is within 60-250 mmHg.",
			Predicate: "sys_bp < 60 OR sys_bp > 250",
		},
		{
			ID: "DQ-103", Asset: "patients", Column: "dia_bp", Name: "below_systolic", Type: TypeConsistency,
			Threshold: 99, Description: "Diastolic pressure is lower than systolic.",
			Predicate: "dia_bp >= sys_bp",
		},
		{
			ID: "DQ-104", Asset: "patients", Column: "spo2", Name: "range_check", Type: TypeValidity,
			Threshold: 99, Description: "SpO2 is within 50-100%.",
			Predicate: "spo2 < 50 OR spo2 > 100",
		},
		{
			ID: "DQ-105", Asset: "patients", Column: "temp", Name: "range_check", Type: TypeValidity,
			Threshold: 99, Description: "Body temperature is within 30-43 C.",
			Predicate: "temp < 30 OR temp > 43",
		},
		{
			ID: "DQ-106", Asset: "patients", Column: "risk_level", Name: "not_null", Type: TypeCompleteness,
			Threshold: 95, Description: "Patients carry a risk level once scored.",
			Predicate: "risk_level IS NULL OR risk_level = ''",
		},
		{
			ID: "DQ-107", Asset: "patients", Column: "admission_date", Name: "not_future", Type: TypeTimeliness,
			Threshold: 100, Description: "Admission dates are not in the future.",
			Predicate: "admission_date > CURRENT_DATE",
		},
	}}
}
