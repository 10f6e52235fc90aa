package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/earnalert/internal/contracts"
)

func TestEntryEventKey(t *testing.T) {
	entryDate := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	key := EntryEventKey("AAPL", entryDate)
	assert.Equal(t, "ENTRY|AAPL|2025-12-01", key)

	// Same inputs always yield the same key
	assert.Equal(t, key, EntryEventKey("AAPL", entryDate))

	// Time-of-day never leaks into the key
	assert.Equal(t, key, EntryEventKey("AAPL", time.Date(2025, 12, 1, 21, 30, 0, 0, time.UTC)))
}

func TestExitEventKey(t *testing.T) {
	entryDate := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	exitDate := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	key := ExitEventKey("AAPL", entryDate, exitDate, contracts.ExitReasonStopLoss)
	assert.Equal(t, "EXIT|AAPL|2025-12-01|2025-12-10|STOP_LOSS", key)

	timeKey := ExitEventKey("AAPL", entryDate, exitDate, contracts.ExitReasonTimeExit)
	assert.Equal(t, "EXIT|AAPL|2025-12-01|2025-12-10|TIME_EXIT", timeKey)

	// Reason is part of the identity
	assert.NotEqual(t, key, timeKey)
}

func TestRenderEntryMessage(t *testing.T) {
	msg := RenderEntryMessage("AAPL",
		time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		d("-0.1182"), d("123.45"))

	assert.Equal(t, "[ENTRY] AAPL 2025-12-01\nEarnings day return: -11.82%\nEntry price (close): 123.45", msg)
}

func TestRenderExitMessage(t *testing.T) {
	msg := RenderExitMessage("AAPL",
		time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
		contracts.ExitReasonStopLoss,
		d("-0.109"), d("110.00"), 9)

	assert.Equal(t, "[EXIT-STOP_LOSS] AAPL 2025-12-10\nPnL: -10.90%\nExit price (close): 110.00\nHolding days: 9", msg)
}
