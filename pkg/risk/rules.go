package risk

import "github.com/optihealth/platform/pkg/common/models"

// Rule is one row of the scoring table. When Applies holds the rule
// contributes Contribute(input) under Label, otherwise Else under ElseLabel.
type Rule struct {
	Label      string
	ElseLabel  string
	Else       float64
	Applies    func(models.VitalsInput) bool
	Contribute func(models.VitalsInput) float64
}

type contribution struct {
	label string
	value float64
}

func (r Rule) evaluate(in models.VitalsInput) contribution {
	if r.Applies(in) {
		return contribution{label: r.Label, value: r.Contribute(in)}
	}
	return contribution{label: r.ElseLabel, value: r.Else}
}

const (
	LabelHighBP = "High BP"
)

// DefaultRules is the readmission rule table, evaluated in order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label:      "Age > 65",
			ElseLabel:  "Age < 65",
			Else:       -5.0,
			Applies:    func(in models.VitalsInput) bool { return in.Age > 65 },
			Contribute: func(in models.VitalsInput) float64 { return float64(in.Age-65) * 1.2 },
		},
		{
			Label:      "High BMI",
			ElseLabel:  "Normal BMI",
			Else:       -2.0,
			Applies:    func(in models.VitalsInput) bool { return in.BMI > 30 },
			Contribute: func(in models.VitalsInput) float64 { return (in.BMI - 25) * 0.8 },
		},
		{
			Label:      LabelHighBP,
			ElseLabel:  "Normal BP",
			Else:       -3.0,
			Applies:    func(in models.VitalsInput) bool { return in.SystolicBP > 140 },
			Contribute: func(in models.VitalsInput) float64 { return float64(in.SystolicBP-120) * 0.4 },
		},
		{
			Label:      "Prior Admits",
			ElseLabel:  "No Prior Admits",
			Else:       -8.0,
			Applies:    func(in models.VitalsInput) bool { return in.PriorReadmissions > 0 },
			Contribute: func(in models.VitalsInput) float64 { return float64(in.PriorReadmissions) * 12 },
		},
	}
}
