package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/logger"
)

const (
	defaultPendingLimit = 200
	maxPendingLimit     = 500
)

// AlertsHandler exposes the alert ledger to the notification dispatcher
type AlertsHandler struct {
	alerts contracts.AlertReader
	logger *logger.Logger
}

// NewAlertsHandler creates a new alerts handler
func NewAlertsHandler(alerts contracts.AlertReader, log *logger.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: log,
	}
}

// PendingAlert is one undelivered alert as seen by the dispatcher
type PendingAlert struct {
	ID        uuid.UUID `json:"id"`
	AlertType string    `json:"alert_type"`
	Symbol    string    `json:"symbol"`
	AsOf      string    `json:"as_of"`
	Message   string    `json:"message"`
}

// Pending returns undelivered alerts, oldest first.
// GET /api/alerts/pending?limit=N (1..500, default 200)
func (h *AlertsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultPendingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPendingLimit {
			respondError(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	alerts, err := h.alerts.Pending(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list pending alerts")
		respondError(w, http.StatusInternalServerError, "Failed to list pending alerts")
		return
	}

	out := make([]PendingAlert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, PendingAlert{
			ID:        a.ID,
			AlertType: string(a.Type),
			Symbol:    a.Symbol,
			AsOf:      a.AsOf.Format("2006-01-02"),
			Message:   a.Message,
		})
	}

	respondJSON(w, http.StatusOK, out)
}

// MarkSentResponse confirms a delivery mark
type MarkSentResponse struct {
	Success bool      `json:"success"`
	ID      uuid.UUID `json:"id"`
	SentAt  time.Time `json:"sent_at"`
}

// MarkSent marks an alert delivered.
// POST /api/alerts/{id}/mark-sent
//
// Idempotent: marking an already-sent alert succeeds and returns the
// original sent_at.
func (h *AlertsHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}

	sentAt, err := h.alerts.MarkSent(ctx, id)
	if err != nil {
		if contracts.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.WithError(err).Error("Failed to mark alert sent")
		respondError(w, http.StatusInternalServerError, "Failed to mark alert sent")
		return
	}

	respondJSON(w, http.StatusOK, MarkSentResponse{
		Success: true,
		ID:      id,
		SentAt:  sentAt,
	})
}
