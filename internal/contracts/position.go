package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle state of a simulated position
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

// ExitReason records why a position was closed
type ExitReason string

const (
	ExitReasonStopLoss ExitReason = "STOP_LOSS"
	ExitReasonTimeExit ExitReason = "TIME_EXIT"
)

// Position is one simulated trade, keyed by (symbol, entry_date).
// Positions are created OPEN by the scan, closed in place on an exit
// signal, and never deleted.
type Position struct {
	ID         uuid.UUID        `json:"id"`
	Symbol     string           `json:"symbol"`
	EntryDate  time.Time        `json:"entry_date"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	Status     PositionStatus   `json:"status"`
	ExitDate   *time.Time       `json:"exit_date,omitempty"`
	ExitPrice  *decimal.Decimal `json:"exit_price,omitempty"`
	ExitReason *ExitReason      `json:"exit_reason,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// IsOpen reports whether the position is still open
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// HoldingDays returns the calendar days between the entry date and asOf.
// Both dates are truncated to midnight UTC first, matching the intent of
// "calendar days held" rather than elapsed hours.
func (p *Position) HoldingDays(asOf time.Time) int {
	return int(DateOnly(asOf).Sub(DateOnly(p.EntryDate)).Hours() / 24)
}

// DateOnly truncates t to midnight UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
