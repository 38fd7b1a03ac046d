package governance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQualityStore struct {
	total    int64
	totalErr error
	failing  map[string]int64
	errs     map[string]error
	ids      map[string][]string
}

func (f *fakeQualityStore) CountPatients(context.Context) (int64, error) {
	return f.total, f.totalErr
}

func (f *fakeQualityStore) CountFailing(_ context.Context, predicate string) (int64, error) {
	if err := f.errs[predicate]; err != nil {
		return 0, err
	}
	return f.failing[predicate], nil
}

func (f *fakeQualityStore) FailingIDs(_ context.Context, predicate string, limit int) ([]string, error) {
	ids := f.ids[predicate]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func testRules() RuleSet {
	return RuleSet{Rules: []QualityRule{
		{ID: "R1", Threshold: 100, Predicate: "clean", Description: "clean"},
		{ID: "R2", Threshold: 99, Predicate: "one_bad", Description: "one bad"},
		{ID: "R3", Threshold: 95, Predicate: "some_bad", Description: "some bad"},
		{ID: "R4", Threshold: 94, Predicate: "many_bad", Description: "many bad"},
		{ID: "R5", Threshold: 90, Predicate: "broken", Description: "broken"},
	}}
}

func TestQualityCheckerEvaluate(t *testing.T) {
	store := &fakeQualityStore{
		total:   200,
		failing: map[string]int64{"one_bad": 1, "some_bad": 20, "many_bad": 30},
		errs:    map[string]error{"broken": errors.New("column does not exist")},
		ids: map[string][]string{
			"one_bad":  {"PAT-1000001"},
			"many_bad": {"PAT-1", "PAT-2", "PAT-3", "PAT-4", "PAT-5", "PAT-6"},
		},
	}

	results, err := NewQualityChecker(store, testRules()).Evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, 100.0, results[0].PassRate)
	assert.Empty(t, results[0].FailedRows)
	assert.Equal(t, "SELECT id FROM patients WHERE clean", results[0].SQLLogic)

	assert.Equal(t, StatusPass, results[1].Status)
	assert.Equal(t, 99.5, results[1].PassRate)
	assert.Equal(t, []FailedRow{{ID: "PAT-1000001", Reason: "one bad"}}, results[1].FailedRows)

	assert.Equal(t, StatusWarning, results[2].Status)
	assert.Equal(t, 90.0, results[2].PassRate)

	assert.Equal(t, StatusFail, results[3].Status)
	assert.Equal(t, 85.0, results[3].PassRate)
	assert.Len(t, results[3].FailedRows, 5)

	assert.Equal(t, StatusError, results[4].Status)
}

func TestQualityCheckerTotalFailure(t *testing.T) {
	store := &fakeQualityStore{totalErr: errors.New("db down")}
	_, err := NewQualityChecker(store, testRules()).Evaluate(context.Background())
	assert.Error(t, err)
}

func TestPassRate(t *testing.T) {
	assert.Equal(t, 100.0, passRate(0, 0))
	assert.Equal(t, 99.9, passRate(1_000_000, 1))
	assert.Equal(t, 0.0, passRate(10, 12))
	assert.Equal(t, 99.7, passRate(1000, 3))
}

func TestLoadQualityRules(t *testing.T) {
	set, err := LoadQualityRules("")
	require.NoError(t, err)
	assert.Len(t, set.Rules, 7)

	dir := t.TempDir()
	valid := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(valid, []byte(`
rules:
  - id: DQ-900
    asset: patients
    column: bmi
    name: range_check
    type: Validity
    threshold: 98
    description: BMI is plausible.
    predicate: bmi < 10 OR bmi > 80
`), 0o600))
	set, err = LoadQualityRules(valid)
	require.NoError(t, err)
	require.Len(t, set.Rules, 1)
	assert.Equal(t, "bmi < 10 OR bmi > 80", set.Rules[0].Predicate)

	noPredicate := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(noPredicate, []byte("rules:\n  - id: DQ-1\n    threshold: 90\n"), 0o600))
	_, err = LoadQualityRules(noPredicate)
	assert.Error(t, err)

	badThreshold := filepath.Join(dir, "threshold.yaml")
	require.NoError(t, os.WriteFile(badThreshold, []byte("rules:\n  - id: DQ-1\n    predicate: x\n    threshold: 120\n"), 0o600))
	_, err = LoadQualityRules(badThreshold)
	assert.Error(t, err)

	set, err = LoadQualityRules(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Len(t, set.Rules, 7)
}

type histogramCall struct{ from, to time.Time }

type fakeDriftStore struct {
	latest    time.Time
	hasLatest bool
	training  map[string]int
	serving   map[string]int
	err       error
	calls     []histogramCall
}

func (f *fakeDriftStore) LatestAdmissionDate(context.Context) (time.Time, bool, error) {
	return f.latest, f.hasLatest, nil
}

func (f *fakeDriftStore) SystolicHistogram(_ context.Context, from, to time.Time) (map[string]int, error) {
	f.calls = append(f.calls, histogramCall{from, to})
	if f.err != nil {
		return nil, f.err
	}
	if from.IsZero() {
		return f.training, nil
	}
	return f.serving, nil
}

func TestDriftReportStable(t *testing.T) {
	store := &fakeDriftStore{
		latest:    time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC),
		hasLatest: true,
		training:  map[string]int{"100-120": 50, "120-140": 50},
		serving:   map[string]int{"100-120": 5, "120-140": 5},
	}

	report, err := NewDriftAnalyzer(store, 14, 0.1).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DriftStable, report.Status)
	assert.Equal(t, 0.0, report.Score)
	assert.Equal(t, []DriftBin{{"<100", 0}, {"100-120", 50}, {"120-140", 50}, {"140-160", 0}, {">160", 0}}, report.Training)

	require.Len(t, store.calls, 2)
	cutoff := time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, cutoff, store.calls[0].to)
	assert.Equal(t, cutoff, store.calls[1].from)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), store.calls[1].to)
}

func TestDriftReportDetectsShift(t *testing.T) {
	store := &fakeDriftStore{
		latest:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		hasLatest: true,
		training:  map[string]int{"<100": 10, "100-120": 40, "120-140": 30, "140-160": 15, ">160": 5},
		serving:   map[string]int{"<100": 5, "100-120": 25, "120-140": 35, "140-160": 25, ">160": 10},
	}

	report, err := NewDriftAnalyzer(store, 0, 0).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DriftDetected, report.Status)
	assert.Greater(t, report.Score, DefaultDriftThreshold)
	assert.Equal(t, 25, report.Serving[3].Y)
}

func TestDriftReportInsufficientData(t *testing.T) {
	report, err := NewDriftAnalyzer(&fakeDriftStore{}, 14, 0.1).Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DriftInsufficient, report.Status)
	assert.Len(t, report.Training, 5)

	store := &fakeDriftStore{
		latest:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		hasLatest: true,
		serving:   map[string]int{"100-120": 3},
	}
	report, err = NewDriftAnalyzer(store, 14, 0.1).Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DriftInsufficient, report.Status)
	assert.Equal(t, 100, report.Serving[1].Y)
}

func TestDriftReportStoreError(t *testing.T) {
	store := &fakeDriftStore{
		latest:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		hasLatest: true,
		err:       errors.New("timeout"),
	}
	_, err := NewDriftAnalyzer(store, 14, 0.1).Report(context.Background())
	assert.Error(t, err)
}

func TestPSI(t *testing.T) {
	assert.InDelta(t, 0.2747, PSI([]float64{0.5, 0.5}, []float64{0.25, 0.75}), 0.001)
	assert.Zero(t, PSI([]float64{0.2, 0.8}, []float64{0.2, 0.8}))
	assert.Greater(t, PSI([]float64{1, 0}, []float64{0, 1}), 1.0)
}

func TestMonitorCheck(t *testing.T) {
	var calls atomic.Int32
	monitor := NewMonitor(time.Second,
		Probe{ID: "postgres", Label: "Operational DB", Check: func(context.Context) error {
			calls.Add(1)
			return nil
		}},
		Probe{ID: "kafka", Label: "Event Bus", Check: func(context.Context) error {
			return errors.New("dial tcp: connection refused")
		}},
		Probe{ID: "model", Label: "Model Artifact", Optional: true, Check: func(context.Context) error {
			return errors.New("no artifact")
		}},
	)
	monitor.now = func() time.Time { return time.Date(2024, 3, 10, 14, 2, 0, 0, time.UTC) }

	monitor.Check(context.Background())
	nodes := monitor.Check(context.Background())

	require.Len(t, nodes, 3)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "postgres", nodes[0].ID)
	assert.Equal(t, NodeHealthy, nodes[0].Status)
	assert.Equal(t, "100.00%", nodes[0].Metrics.Uptime)
	assert.Equal(t, "0.00%", nodes[0].Metrics.ErrorRate)
	assert.Empty(t, nodes[0].LastIncident)

	assert.Equal(t, NodeError, nodes[1].Status)
	assert.Equal(t, "0.00%", nodes[1].Metrics.Uptime)
	assert.Equal(t, "dial tcp: connection refused (14:02 UTC)", nodes[1].LastIncident)

	assert.Equal(t, NodeWarning, nodes[2].Status)
}

func TestMonitorProbeTimeout(t *testing.T) {
	monitor := NewMonitor(10*time.Millisecond, Probe{ID: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	nodes := monitor.Check(context.Background())
	assert.Equal(t, NodeError, nodes[0].Status)
}

func TestProbeHistoryIsBounded(t *testing.T) {
	h := &probeHistory{}
	for i := 0; i < historySize; i++ {
		h.record(false)
	}
	for i := 0; i < historySize/2; i++ {
		h.record(true)
	}
	assert.Len(t, h.outcomes, historySize)
	assert.Equal(t, 50.0, h.uptime())
}
