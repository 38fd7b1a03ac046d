package governance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/dlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, quality *fakeQualityStore) *mux.Router {
	t.Helper()
	detector, err := dlp.NewDetector(dlp.DefaultRules())
	require.NoError(t, err)

	monitor := NewMonitor(time.Second, Probe{ID: "postgres", Label: "Operational DB", Check: func(context.Context) error { return nil }})
	drift := NewDriftAnalyzer(&fakeDriftStore{}, 14, 0.1)

	router := mux.NewRouter()
	NewHTTPHandler(monitor, NewQualityChecker(quality, testRules()), drift, detector, 1024).Register(router)
	return router
}

func TestGovernanceOverview(t *testing.T) {
	router := newTestRouter(t, &fakeQualityStore{total: 10})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Pipeline, 1)
	assert.Len(t, body.DQRules, 5)
	assert.Equal(t, DriftInsufficient, body.Drift.Status)
}

func TestGovernanceOverviewDegrades(t *testing.T) {
	router := newTestRouter(t, &fakeQualityStore{totalErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.DQRules)
	assert.Len(t, body.Pipeline, 1)
}

func TestGovernanceRules(t *testing.T) {
	router := newTestRouter(t, &fakeQualityStore{total: 10})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rules []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 5)
	assert.Equal(t, "R1", rules[0]["id"])
	assert.Equal(t, StatusPass, rules[0]["status"])
	assert.NotContains(t, rules[0], "predicate")
	assert.Contains(t, rules[0], "sqlLogic")

	router = newTestRouter(t, &fakeQualityStore{totalErr: errors.New("db down")})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance/rules", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGovernancePipelineAndDrift(t *testing.T) {
	router := newTestRouter(t, &fakeQualityStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance/pipeline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var nodes []PipelineNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeHealthy, nodes[0].Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/governance/drift", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report DriftReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Systolic BP (mmHg)", report.Feature)
}

func TestGovernancePHIScan(t *testing.T) {
	router := newTestRouter(t, &fakeQualityStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/governance/phi/scan", strings.NewReader(`{"text":"PAT-1234567 SSN 123-45-6789"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp phiScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Findings, 2)
	assert.Equal(t, "PAT-******* SSN ***-**-****", resp.Masked)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/governance/phi/scan", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
