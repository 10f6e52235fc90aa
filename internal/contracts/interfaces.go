package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UniverseProvider supplies the current eligible symbol set
type UniverseProvider interface {
	// Current returns the universe snapshot, refreshing it when stale.
	Current(ctx context.Context) (*UniverseSnapshot, error)
}

// MarketDataProvider supplies earnings-calendar membership and closing
// prices. A missing price or calendar row is reported as
// ErrDataUnavailable, never as a hard failure.
type MarketDataProvider interface {
	// EarningsSymbols returns the set of symbols reporting earnings on date.
	EarningsSymbols(ctx context.Context, date time.Time) (map[string]struct{}, error)

	// PriceAround returns the close on date and the close of the previous
	// trading day before it.
	PriceAround(ctx context.Context, symbol string, date time.Time) (close, prevClose decimal.Decimal, err error)

	// ClosePrice returns the close for symbol on date.
	ClosePrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)
}

// Ledger is the durable record of positions and alerts. Implementations
// enforce uniqueness on (symbol, entry_date) and event_key; an insert
// colliding with an existing row is a successful no-op, which is what the
// returned bools report. The position/alert pair of each Record call is
// written atomically.
type Ledger interface {
	// OpenPositions returns every currently OPEN position.
	OpenPositions(ctx context.Context) ([]Position, error)

	// RecordEntry inserts an OPEN position and its ENTRY alert.
	// Returns true when the alert row was newly inserted.
	RecordEntry(ctx context.Context, pos Position, alert Alert) (bool, error)

	// RecordExit closes an existing position and inserts its EXIT alert.
	// Closing an already-closed position is a no-op; closing a position
	// that does not exist is ErrInvariantViolation.
	RecordExit(ctx context.Context, pos Position, alert Alert) (bool, error)
}

// AlertReader is the query surface the notification dispatcher polls
type AlertReader interface {
	// Pending returns undelivered alerts, created_at ascending, up to limit.
	Pending(ctx context.Context, limit int) ([]Alert, error)

	// MarkSent stamps sent_at on an alert. Idempotent: marking an
	// already-sent alert returns the original timestamp.
	MarkSent(ctx context.Context, id uuid.UUID) (time.Time, error)
}

// PositionReader exposes the ledger to the read-only API surface
type PositionReader interface {
	// Positions returns positions, optionally filtered by status.
	Positions(ctx context.Context, status PositionStatus) ([]Position, error)
}
