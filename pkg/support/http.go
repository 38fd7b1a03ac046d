package support

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/common/logger"
)

type ChatMessage struct {
	Text string `json:"text"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type TicketResponse struct {
	Status   string `json:"status"`
	TicketID string `json:"ticket_id"`
}

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/support/chat", h.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/support/status", h.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/support/tickets", h.handleOpenTicket).Methods(http.MethodPost)
	router.HandleFunc("/support/tickets", h.handleListTickets).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var msg ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{Reply: h.service.Chat(msg.Text)})
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.service.Status())
}

func (h *HTTPHandler) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid ticket payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.service.OpenTicket(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to open ticket")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TicketResponse{Status: "success", TicketID: t.ID})
}

func (h *HTTPHandler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	out, err := h.service.RecentTickets(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list tickets")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
