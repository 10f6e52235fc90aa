package strategy

import (
	"fmt"
	"time"

	"github.com/wonny/earnalert/internal/contracts"
)

// Event keys are derived from the firing rule's identity fields alone, with
// no randomness. Their format is a stable on-disk contract: changing it
// breaks deduplication across deployments.

const keyDateLayout = "2006-01-02"

// EntryEventKey returns "ENTRY|{symbol}|{entry_date}". It carries the same
// identity as the position's (symbol, entry_date) uniqueness constraint, so
// a duplicate entry attempt collides on both ledgers at once.
func EntryEventKey(symbol string, entryDate time.Time) string {
	return fmt.Sprintf("ENTRY|%s|%s", symbol, entryDate.Format(keyDateLayout))
}

// ExitEventKey returns "EXIT|{symbol}|{entry_date}|{exit_date}|{exit_reason}"
func ExitEventKey(symbol string, entryDate, exitDate time.Time, reason contracts.ExitReason) string {
	return fmt.Sprintf("EXIT|%s|%s|%s|%s",
		symbol,
		entryDate.Format(keyDateLayout),
		exitDate.Format(keyDateLayout),
		reason,
	)
}
