package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/optihealth/platform/pkg/common/models"
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

// PredictRequest mirrors VitalsInput with pointers so absent fields can be
// told apart from zero values.
type PredictRequest struct {
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	SystolicBP        *int     `json:"systolicBp"`
	DiastolicBP       *int     `json:"diastolicBp"`
	HeartRate         *int     `json:"heartRate"`
	SpO2              *float64 `json:"spo2"`
	Temp              *float64 `json:"temp"`
	BMI               *float64 `json:"bmi"`
	PriorReadmissions *int     `json:"priorReadmissions,omitempty"`
	ClinicalNotes     *string  `json:"clinicalNotes,omitempty"`
}

func (r PredictRequest) Validate() error {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("age", r.Age != nil)
	check("gender", r.Gender != nil)
	check("systolicBp", r.SystolicBP != nil)
	check("diastolicBp", r.DiastolicBP != nil)
	check("heartRate", r.HeartRate != nil)
	check("spo2", r.SpO2 != nil)
	check("temp", r.Temp != nil)
	check("bmi", r.BMI != nil)
	if len(missing) > 0 {
		return ValidationError{reason: fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

// ToModel assumes Validate has passed.
func (r PredictRequest) ToModel() models.VitalsInput {
	in := models.VitalsInput{
		Age:         *r.Age,
		Gender:      *r.Gender,
		SystolicBP:  *r.SystolicBP,
		DiastolicBP: *r.DiastolicBP,
		HeartRate:   *r.HeartRate,
		SpO2:        *r.SpO2,
		Temp:        *r.Temp,
		BMI:         *r.BMI,
	}
	if r.PriorReadmissions != nil {
		in.PriorReadmissions = *r.PriorReadmissions
	}
	if r.ClinicalNotes != nil {
		in.ClinicalNotes = *r.ClinicalNotes
	}
	return in
}
