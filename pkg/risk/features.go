package risk

import (
	"strings"

	"github.com/optihealth/platform/pkg/common/models"
)

// FeatureNames labels FeatureVector columns, in order.
var FeatureNames = []string{
	"Age", "Gender", "Sys BP", "Dia BP", "HR", "SPO2", "Temp", "BMI",
	"Pulse Press", "MAP", "Shock Index",
}

type Derived struct {
	PulsePressure float64
	MAP           float64
	ShockIndex    float64
}

// Derive computes haemodynamic ratios. Shock index falls back to 0 when the
// systolic pressure is zero or negative.
func Derive(in models.VitalsInput) Derived {
	sys := float64(in.SystolicBP)
	dia := float64(in.DiastolicBP)
	d := Derived{
		PulsePressure: sys - dia,
		MAP:           (sys + 2*dia) / 3,
	}
	if sys > 0 {
		d.ShockIndex = float64(in.HeartRate) / sys
	}
	return d
}

func GenderCode(gender string) float64 {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "m", "male":
		return 1
	default:
		return 0
	}
}

// FeatureVector flattens vitals into the model's input columns.
func FeatureVector(in models.VitalsInput) []float64 {
	d := Derive(in)
	return []float64{
		float64(in.Age),
		GenderCode(in.Gender),
		float64(in.SystolicBP),
		float64(in.DiastolicBP),
		float64(in.HeartRate),
		in.SpO2,
		in.Temp,
		in.BMI,
		d.PulsePressure,
		d.MAP,
		d.ShockIndex,
	}
}
