package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/config"
)

// Config holds the rule thresholds as exact decimals. Entry and stop-loss
// boundaries are inclusive, so threshold comparisons must not go through
// float64.
type Config struct {
	EntryReturnMin    decimal.Decimal
	EntryReturnMax    decimal.Decimal
	StopLossThreshold decimal.Decimal
	MaxHoldingDays    int
}

// DefaultConfig returns the documented strategy parameters
func DefaultConfig() Config {
	return Config{
		EntryReturnMin:    decimal.RequireFromString("-0.30"),
		EntryReturnMax:    decimal.RequireFromString("-0.05"),
		StopLossThreshold: decimal.RequireFromString("-0.10"),
		MaxHoldingDays:    50,
	}
}

// ConfigFrom builds a rule config from the application config
func ConfigFrom(sc config.StrategyConfig) (Config, error) {
	min, err := decimal.NewFromString(sc.EntryReturnMin)
	if err != nil {
		return Config{}, fmt.Errorf("parse ENTRY_RETURN_MIN: %w", err)
	}
	max, err := decimal.NewFromString(sc.EntryReturnMax)
	if err != nil {
		return Config{}, fmt.Errorf("parse ENTRY_RETURN_MAX: %w", err)
	}
	stop, err := decimal.NewFromString(sc.StopLossThreshold)
	if err != nil {
		return Config{}, fmt.Errorf("parse STOP_LOSS_THRESHOLD: %w", err)
	}

	return Config{
		EntryReturnMin:    min,
		EntryReturnMax:    max,
		StopLossThreshold: stop,
		MaxHoldingDays:    sc.MaxHoldingDays,
	}, nil
}

var one = decimal.NewFromInt(1)

// EarningsReturn computes close/prevClose - 1
func EarningsReturn(close, prevClose decimal.Decimal) decimal.Decimal {
	return close.Div(prevClose).Sub(one)
}

// PnL computes close/entryPrice - 1
func PnL(close, entryPrice decimal.Decimal) decimal.Decimal {
	return close.Div(entryPrice).Sub(one)
}

// EntryQualifies reports whether an earnings-day return falls inside the
// entry band, both bounds inclusive.
func (c Config) EntryQualifies(earningsReturn decimal.Decimal) bool {
	return earningsReturn.GreaterThanOrEqual(c.EntryReturnMin) &&
		earningsReturn.LessThanOrEqual(c.EntryReturnMax)
}

// ExitDecision describes a firing exit rule
type ExitDecision struct {
	Reason      contracts.ExitReason
	PnL         decimal.Decimal
	HoldingDays int
}

// EvaluateExit applies the exit rules to an open position. Stop-loss is
// checked before time exit; a position never exits for two reasons on the
// same day. Returns nil when the position stays open.
func (c Config) EvaluateExit(pos *contracts.Position, close decimal.Decimal, asOf time.Time) *ExitDecision {
	pnl := PnL(close, pos.EntryPrice)
	holdingDays := pos.HoldingDays(asOf)

	if pnl.LessThanOrEqual(c.StopLossThreshold) {
		return &ExitDecision{
			Reason:      contracts.ExitReasonStopLoss,
			PnL:         pnl,
			HoldingDays: holdingDays,
		}
	}

	if holdingDays >= c.MaxHoldingDays {
		return &ExitDecision{
			Reason:      contracts.ExitReasonTimeExit,
			PnL:         pnl,
			HoldingDays: holdingDays,
		}
	}

	return nil
}
