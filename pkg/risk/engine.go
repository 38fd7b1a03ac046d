// Package risk scores readmission risk from vitals and clinical notes.
package risk

import (
	"math"
	"sort"
	"strings"

	"github.com/optihealth/platform/pkg/clinical"
	"github.com/optihealth/platform/pkg/common/models"
)

const (
	LevelLow      = "Low"
	LevelMedium   = "Medium"
	LevelHigh     = "High"
	LevelCritical = "Critical"

	BaseScore       = 15.0
	MinScore        = 5
	MaxScore        = 98
	ModelConfidence = 94.2

	InterventionMonitor    = "Monitor Vitals (Q4H)"
	InterventionTelehealth = "Schedule Telehealth Review"
	InterventionBPDosage   = "Adjust Anti-hypertensive Dosage"

	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"

	SummaryEntities   = "Keyword analysis detected clinical entities affecting the risk profile."
	SummaryNoEntities = "No risk-relevant entities detected in clinical notes."

	maxContributingFactors = 3
	negativeSentimentAbove = 10.0
)

// Engine is read-only after construction and safe for concurrent use.
type Engine struct {
	rules     []Rule
	extractor *clinical.Extractor
}

type Option func(*Engine)

func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		if len(rules) > 0 {
			e.rules = rules
		}
	}
}

// NewEngine builds an engine over the given keyword extractor. A nil extractor
// disables note scoring.
func NewEngine(extractor *clinical.Extractor, opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules(), extractor: extractor}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score never fails; every rule contributes exactly once.
func (e *Engine) Score(in models.VitalsInput) models.RiskResult {
	raw := BaseScore
	contributions := make([]contribution, 0, len(e.rules))
	highBP := false
	for _, rule := range e.rules {
		c := rule.evaluate(in)
		raw += c.value
		if c.label == LabelHighBP {
			highBP = true
		}
		contributions = append(contributions, c)
	}

	nlp, nlpScore := e.analyseNotes(in.ClinicalNotes)
	final := finalScore(raw + nlpScore)

	return models.RiskResult{
		RiskScore:              final,
		RiskLevel:              Level(final),
		ReadmissionProbability: final,
		ModelConfidence:        ModelConfidence,
		ContributingFactors:    contributingFactors(contributions),
		SuggestedInterventions: interventions(final, highBP),
		ShapValues:             shapValues(contributions),
		NLPAnalysis:            nlp,
	}
}

func (e *Engine) analyseNotes(notes string) (models.NLPAnalysis, float64) {
	analysis := models.NLPAnalysis{
		Summary:   clinical.SummaryNoNotes,
		Entities:  []models.ClinicalEntity{},
		Sentiment: SentimentNeutral,
	}
	if e.extractor == nil || strings.TrimSpace(notes) == "" {
		return analysis, 0
	}

	analysis.Entities = e.extractor.Extract(notes)
	score := e.extractor.Score(analysis.Entities)
	analysis.Summary = SummaryNoEntities
	if len(analysis.Entities) > 0 {
		analysis.Summary = SummaryEntities
	}
	if score > negativeSentimentAbove {
		analysis.Sentiment = SentimentNegative
	}
	return analysis, score
}

// Level maps a final score onto the tier ladder.
func Level(score int) string {
	switch {
	case score >= 75:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 25:
		return LevelMedium
	default:
		return LevelLow
	}
}

func contributingFactors(contributions []contribution) []string {
	factors := []string{}
	for _, c := range contributions {
		if roundCents(c.value) > 0 {
			factors = append(factors, c.label)
			if len(factors) == maxContributingFactors {
				break
			}
		}
	}
	return factors
}

func interventions(final int, highBP bool) []string {
	out := []string{InterventionMonitor}
	if final > 50 {
		out = append(out, InterventionTelehealth)
	}
	if highBP {
		out = append(out, InterventionBPDosage)
	}
	return out
}

func shapValues(contributions []contribution) []models.ShapValue {
	values := make([]models.ShapValue, 0, len(contributions))
	for _, c := range contributions {
		values = append(values, models.ShapValue{Feature: c.label, Value: roundCents(c.value)})
	}
	sort.SliceStable(values, func(i, j int) bool {
		return math.Abs(values[i].Value) > math.Abs(values[j].Value)
	})
	return values
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// finalScore rounds and clamps in float space so extreme inputs cannot
// overflow the int conversion.
func finalScore(v float64) int {
	r := math.Round(v)
	switch {
	case math.IsNaN(r), r < MinScore:
		return MinScore
	case r > MaxScore:
		return MaxScore
	default:
		return int(r)
	}
}
