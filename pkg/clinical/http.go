package clinical

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/common/logger"
)

type entitiesRequest struct {
	Text string `json:"text"`
}

type HTTPHandler struct {
	analyzer *Analyzer
	maxBody  int64
}

func NewHTTPHandler(analyzer *Analyzer, maxBody int64) *HTTPHandler {
	return &HTTPHandler{analyzer: analyzer, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/ml/entities", h.handleEntities).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleEntities(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req entitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid entities payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	analysis, err := h.analyzer.Analyze(r.URL.Query().Get("dictionary"), req.Text)
	if err != nil {
		if errors.Is(err, ErrUnknownDictionary) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to analyse clinical notes")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}
