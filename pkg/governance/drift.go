package governance

import (
	"context"
	"math"
	"time"
)

// Drift statuses.
const (
	DriftDetected     = "Drift Detected"
	DriftStable       = "Stable"
	DriftInsufficient = "Insufficient Data"
)

const (
	DefaultDriftWindowDays = 14
	DefaultDriftThreshold  = 0.1
	driftFeature           = "Systolic BP (mmHg)"
	psiEpsilon             = 1e-4
)

var binOrder = []string{"<100", "100-120", "120-140", "140-160", ">160"}

type DriftStore interface {
	LatestAdmissionDate(ctx context.Context) (time.Time, bool, error)
	SystolicHistogram(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type DriftBin struct {
	X string `json:"x"`
	Y int    `json:"y"`
}

type DriftReport struct {
	Feature   string     `json:"feature"`
	Score     float64    `json:"score"`
	Status    string     `json:"status"`
	Threshold float64    `json:"threshold"`
	Training  []DriftBin `json:"training"`
	Serving   []DriftBin `json:"serving"`
}

// DriftAnalyzer compares the systolic pressure distribution of recent
// admissions (serving) against everything admitted before them (training).
type DriftAnalyzer struct {
	store      DriftStore
	windowDays int
	threshold  float64
}

func NewDriftAnalyzer(store DriftStore, windowDays int, threshold float64) *DriftAnalyzer {
	if windowDays <= 0 {
		windowDays = DefaultDriftWindowDays
	}
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}
	return &DriftAnalyzer{store: store, windowDays: windowDays, threshold: threshold}
}

func (a *DriftAnalyzer) Report(ctx context.Context) (DriftReport, error) {
	report := DriftReport{
		Feature:   driftFeature,
		Status:    DriftInsufficient,
		Threshold: a.threshold,
		Training:  percentages(nil),
		Serving:   percentages(nil),
	}

	latest, ok, err := a.store.LatestAdmissionDate(ctx)
	if err != nil || !ok {
		return report, err
	}
	y, m, d := latest.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	cutoff := end.AddDate(0, 0, -a.windowDays)

	training, err := a.store.SystolicHistogram(ctx, time.Time{}, cutoff)
	if err != nil {
		return report, err
	}
	serving, err := a.store.SystolicHistogram(ctx, cutoff, end)
	if err != nil {
		return report, err
	}

	report.Training = percentages(training)
	report.Serving = percentages(serving)
	if sum(training) == 0 || sum(serving) == 0 {
		return report, nil
	}

	report.Score = math.Round(PSI(proportions(training), proportions(serving))*100) / 100
	report.Status = DriftStable
	if report.Score >= a.threshold {
		report.Status = DriftDetected
	}
	return report, nil
}

// PSI is the population stability index between two binned distributions.
// Empty bins are floored at a small epsilon.
func PSI(expected, actual []float64) float64 {
	var score float64
	for i := range expected {
		if i >= len(actual) {
			break
		}
		e := math.Max(expected[i], psiEpsilon)
		a := math.Max(actual[i], psiEpsilon)
		score += (a - e) * math.Log(a/e)
	}
	return score
}

func proportions(counts map[string]int) []float64 {
	total := float64(sum(counts))
	out := make([]float64, len(binOrder))
	if total == 0 {
		return out
	}
	for i, bin := range binOrder {
		out[i] = float64(counts[bin]) / total
	}
	return out
}

func percentages(counts map[string]int) []DriftBin {
	props := proportions(counts)
	out := make([]DriftBin, len(binOrder))
	for i, bin := range binOrder {
		out[i] = DriftBin{X: bin, Y: int(math.Round(props[i] * 100))}
	}
	return out
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
