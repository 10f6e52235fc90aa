package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/earnalert/internal/contracts"
)

// Alert message bodies are rendered from the same fields that form the
// event identity plus the stored prices. They must be reproducible from
// ledger rows alone, so nothing here touches live market data.

var hundred = decimal.NewFromInt(100)

// RenderEntryMessage formats the ENTRY notification body
func RenderEntryMessage(symbol string, asOf time.Time, earningsReturn, entryPrice decimal.Decimal) string {
	return fmt.Sprintf("[ENTRY] %s %s\nEarnings day return: %s%%\nEntry price (close): %s",
		symbol,
		asOf.Format(keyDateLayout),
		earningsReturn.Mul(hundred).StringFixed(2),
		entryPrice.StringFixed(2),
	)
}

// RenderExitMessage formats the EXIT notification body
func RenderExitMessage(symbol string, exitDate time.Time, reason contracts.ExitReason, pnl, exitPrice decimal.Decimal, holdingDays int) string {
	return fmt.Sprintf("[EXIT-%s] %s %s\nPnL: %s%%\nExit price (close): %s\nHolding days: %d",
		reason,
		symbol,
		exitDate.Format(keyDateLayout),
		pnl.Mul(hundred).StringFixed(2),
		exitPrice.StringFixed(2),
		holdingDays,
	)
}
