package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // risk.scored
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Census continuity
type Observation struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// CensusPoint is one day of the dashboard census chart. Actual and Predicted
// are both set only on the bridge point.
type CensusPoint struct {
	Date      time.Time
	Actual    *int
	Predicted *int
	Capacity  int
}

type censusPointWire struct {
	Time      string `json:"time"`
	Actual    *int   `json:"actual"`
	Predicted *int   `json:"predicted"`
	Capacity  int    `json:"capacity"`
}

func (p CensusPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(censusPointWire{
		Time:      p.Date.Format(DateLayout),
		Actual:    p.Actual,
		Predicted: p.Predicted,
		Capacity:  p.Capacity,
	})
}

func (p *CensusPoint) UnmarshalJSON(data []byte) error {
	var wire censusPointWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, wire.Time)
	if err != nil {
		return err
	}
	*p = CensusPoint{Date: date, Actual: wire.Actual, Predicted: wire.Predicted, Capacity: wire.Capacity}
	return nil
}

// Risk scoring
type VitalsInput struct {
	Age               int     `json:"age"`
	Gender            string  `json:"gender"`
	SystolicBP        int     `json:"systolicBp"`
	DiastolicBP       int     `json:"diastolicBp"`
	HeartRate         int     `json:"heartRate"`
	SpO2              float64 `json:"spo2"`
	Temp              float64 `json:"temp"`
	BMI               float64 `json:"bmi"`
	PriorReadmissions int     `json:"priorReadmissions"`
	ClinicalNotes     string  `json:"clinicalNotes"`
}

type ShapValue struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

type ClinicalEntity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type NLPAnalysis struct {
	Summary   string           `json:"summary"`
	Entities  []ClinicalEntity `json:"entities"`
	Sentiment string           `json:"sentiment"`
}

type RiskResult struct {
	RiskScore              int         `json:"riskScore"`
	RiskLevel              string      `json:"riskLevel"`
	ReadmissionProbability int         `json:"readmissionProbability"`
	ModelConfidence        float64     `json:"modelConfidence"`
	ContributingFactors    []string    `json:"contributingFactors"`
	SuggestedInterventions []string    `json:"suggestedInterventions"`
	ShapValues             []ShapValue `json:"shapValues"`
	NLPAnalysis            NLPAnalysis `json:"nlpAnalysis"`
}

// Free-text entity extraction
type NotesAnalysis struct {
	Entities       []ClinicalEntity `json:"entities"`
	SentimentScore float64          `json:"sentimentScore"`
	Summary        string           `json:"summary"`
}

// Dashboard
type KPIMetrics struct {
	ActivePatients        int     `json:"activePatients"`
	AvgLOS                float64 `json:"avgLos"`
	ReadmissionRate       float64 `json:"readmissionRate"`
	VirtualBedUtilization float64 `json:"virtualBedUtilization"`
}

type RiskBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

type TrendPoint struct {
	Month string  `json:"month"`
	Rate  float64 `json:"rate"`
}

type Dashboard struct {
	KPI               KPIMetrics          `json:"kpi"`
	CensusData        []CensusPoint       `json:"censusData"`
	PopulationRisk    []RiskBucket        `json:"populationRisk"`
	FeatureImportance []FeatureImportance `json:"featureImportance"`
	ReadmissionTrend  []TrendPoint        `json:"readmissionTrend"`
}
