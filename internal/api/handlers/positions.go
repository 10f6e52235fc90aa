package handlers

import (
	"net/http"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/logger"
)

// PositionsHandler exposes the position ledger read-only
type PositionsHandler struct {
	positions contracts.PositionReader
	logger    *logger.Logger
}

// NewPositionsHandler creates a new positions handler
func NewPositionsHandler(positions contracts.PositionReader, log *logger.Logger) *PositionsHandler {
	return &PositionsHandler{
		positions: positions,
		logger:    log,
	}
}

// List returns positions, optionally filtered by status.
// GET /api/positions?status=OPEN|CLOSED
func (h *PositionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var status contracts.PositionStatus
	switch raw := r.URL.Query().Get("status"); raw {
	case "":
		// all positions
	case string(contracts.PositionStatusOpen):
		status = contracts.PositionStatusOpen
	case string(contracts.PositionStatusClosed):
		status = contracts.PositionStatusClosed
	default:
		respondError(w, http.StatusBadRequest, "status must be OPEN or CLOSED")
		return
	}

	positions, err := h.positions.Positions(ctx, status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list positions")
		respondError(w, http.StatusInternalServerError, "Failed to list positions")
		return
	}

	respondJSON(w, http.StatusOK, positions)
}
