package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/common/logger"
)

type predictionLister interface {
	Recent(ctx context.Context, limit int) ([]PredictionLog, error)
}

type HTTPHandler struct {
	service  *Service
	logs     predictionLister
	maxBody  int64
	maxLimit int
}

// NewHTTPHandler registers the prediction log route only when logs is non-nil.
func NewHTTPHandler(service *Service, logs predictionLister, maxBody int64, maxLimit int) *HTTPHandler {
	return &HTTPHandler{service: service, logs: logs, maxBody: maxBody, maxLimit: maxLimit}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/ml/predict", h.handlePredict).Methods(http.MethodPost)
	if h.logs != nil {
		router.HandleFunc("/ml/predictions", h.handlePredictions).Methods(http.MethodGet)
	}
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid prediction payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Predict(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to score prediction")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *HTTPHandler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		if h.maxLimit <= 0 || n < h.maxLimit {
			limit = n
		}
	}

	logs, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list prediction logs")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []PredictionLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
