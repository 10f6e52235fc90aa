package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/earnalert/internal/strategy"
	"github.com/wonny/earnalert/pkg/logger"
)

// ScanHandler triggers the daily scan
type ScanHandler struct {
	engine *strategy.Engine
	logger *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(engine *strategy.Engine, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		engine: engine,
		logger: log,
	}
}

// RunDaily runs the entry and exit scan for one date.
// POST /api/jobs/daily?as_of=YYYY-MM-DD
//
// Idempotent: repeating the call for the same date creates no duplicate
// positions or alerts and returns zero new-alert counts. Per-symbol failures
// are reflected in symbol_errors, not in the HTTP status.
func (h *ScanHandler) RunDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	asOfParam := r.URL.Query().Get("as_of")
	if asOfParam == "" {
		respondError(w, http.StatusBadRequest, "as_of query parameter is required (YYYY-MM-DD)")
		return
	}

	asOf, err := time.Parse("2006-01-02", asOfParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid as_of date format (expected YYYY-MM-DD)")
		return
	}

	result, err := h.engine.RunDailyScan(ctx, asOf)
	if err != nil {
		h.logger.WithError(err).Error("Daily scan failed")
		respondError(w, http.StatusInternalServerError, "Daily scan failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
