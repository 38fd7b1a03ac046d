package governance

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/dlp"
)

type Overview struct {
	Pipeline []PipelineNode `json:"pipeline"`
	DQRules  []RuleResult   `json:"dq_rules"`
	Drift    DriftReport    `json:"drift"`
}

type phiScanRequest struct {
	Text string `json:"text"`
}

type phiScanResponse struct {
	Findings []dlp.Finding `json:"findings"`
	Masked   string        `json:"masked"`
}

type HTTPHandler struct {
	monitor  *Monitor
	quality  *QualityChecker
	drift    *DriftAnalyzer
	detector *dlp.Detector
	maxBody  int64
}

func NewHTTPHandler(monitor *Monitor, quality *QualityChecker, drift *DriftAnalyzer, detector *dlp.Detector, maxBody int64) *HTTPHandler {
	return &HTTPHandler{monitor: monitor, quality: quality, drift: drift, detector: detector, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/governance", h.handleOverview).Methods(http.MethodGet)
	router.HandleFunc("/governance/pipeline", h.handlePipeline).Methods(http.MethodGet)
	router.HandleFunc("/governance/rules", h.handleRules).Methods(http.MethodGet)
	router.HandleFunc("/governance/drift", h.handleDrift).Methods(http.MethodGet)
	router.HandleFunc("/governance/phi/scan", h.handlePHIScan).Methods(http.MethodPost)
}

// handleOverview never fails; sections that error are returned empty.
func (h *HTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := Overview{Pipeline: h.monitor.Check(ctx), DQRules: []RuleResult{}}

	if rules, err := h.quality.Evaluate(ctx); err != nil {
		logger.Log.WithError(err).Error("failed to evaluate quality rules")
	} else {
		out.DQRules = rules
	}

	report, err := h.drift.Report(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute drift report")
	}
	out.Drift = report

	writeJSON(w, out)
}

func (h *HTTPHandler) handlePipeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.monitor.Check(r.Context()))
}

func (h *HTTPHandler) handleRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.quality.Evaluate(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to evaluate quality rules")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rules)
}

func (h *HTTPHandler) handleDrift(w http.ResponseWriter, r *http.Request) {
	report, err := h.drift.Report(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute drift report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func (h *HTTPHandler) handlePHIScan(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req phiScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, phiScanResponse{
		Findings: h.detector.Scan(req.Text),
		Masked:   h.detector.Mask(req.Text),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
