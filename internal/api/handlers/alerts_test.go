package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/pkg/logger"
)

func seedAlert(t *testing.T, store *ledger.MemoryStore, symbol string, entryDate time.Time) contracts.Alert {
	t.Helper()

	pos := contracts.Position{
		ID:         uuid.New(),
		Symbol:     symbol,
		EntryDate:  entryDate,
		EntryPrice: decimal.RequireFromString("123.45"),
		Status:     contracts.PositionStatusOpen,
	}
	alert := contracts.Alert{
		ID:        uuid.New(),
		EventKey:  "ENTRY|" + symbol + "|" + entryDate.Format("2006-01-02"),
		Type:      contracts.AlertTypeEntry,
		Symbol:    symbol,
		AsOf:      entryDate,
		Message:   "[ENTRY] " + symbol,
		CreatedAt: time.Now().UTC(),
	}

	inserted, err := store.RecordEntry(context.Background(), pos, alert)
	require.NoError(t, err)
	require.True(t, inserted)
	return alert
}

func TestAlertsHandler_Pending(t *testing.T) {
	store := ledger.NewMemoryStore()
	first := seedAlert(t, store, "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	seedAlert(t, store, "MSFT", time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC))

	handler := NewAlertsHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/pending", nil)
	rec := httptest.NewRecorder()
	handler.Pending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out []PendingAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, first.ID, out[0].ID, "oldest first")
	assert.Equal(t, "ENTRY", out[0].AlertType)
	assert.Equal(t, "2025-12-01", out[0].AsOf)
	assert.Equal(t, "[ENTRY] AAPL", out[0].Message)
}

func TestAlertsHandler_PendingLimit(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedAlert(t, store, "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	seedAlert(t, store, "MSFT", time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC))

	handler := NewAlertsHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/pending?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.Pending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out []PendingAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 1)
}

func TestAlertsHandler_PendingLimitValidation(t *testing.T) {
	handler := NewAlertsHandler(ledger.NewMemoryStore(), logger.NewNop())

	for _, raw := range []string{"0", "-1", "501", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts/pending?limit="+raw, nil)
		rec := httptest.NewRecorder()
		handler.Pending(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
	}
}

func TestAlertsHandler_MarkSent(t *testing.T) {
	store := ledger.NewMemoryStore()
	alert := seedAlert(t, store, "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))

	handler := NewAlertsHandler(store, logger.NewNop())

	markSent := func() MarkSentResponse {
		req := httptest.NewRequest(http.MethodPost, "/api/alerts/"+alert.ID.String()+"/mark-sent", nil)
		req = mux.SetURLVars(req, map[string]string{"id": alert.ID.String()})
		rec := httptest.NewRecorder()
		handler.MarkSent(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var out MarkSentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	first := markSent()
	assert.True(t, first.Success)
	assert.Equal(t, alert.ID, first.ID)
	assert.False(t, first.SentAt.IsZero())

	// Second mark is a no-op returning the original timestamp
	second := markSent()
	assert.True(t, second.SentAt.Equal(first.SentAt))

	// And the alert is no longer pending
	pending, err := store.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAlertsHandler_MarkSentNotFound(t *testing.T) {
	handler := NewAlertsHandler(ledger.NewMemoryStore(), logger.NewNop())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/"+id+"/mark-sent", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	handler.MarkSent(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsHandler_MarkSentInvalidID(t *testing.T) {
	handler := NewAlertsHandler(ledger.NewMemoryStore(), logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/not-a-uuid/mark-sent", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	rec := httptest.NewRecorder()
	handler.MarkSent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
