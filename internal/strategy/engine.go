package strategy

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/logger"
)

// Engine runs the daily entry/exit scan. It is safe to invoke the scan
// repeatedly or concurrently for the same date: the ledger's uniqueness
// constraints are the sole concurrency control, and a colliding write is a
// successful no-op that does not count toward the returned totals.
type Engine struct {
	config   Config
	universe contracts.UniverseProvider
	market   contracts.MarketDataProvider
	ledger   contracts.Ledger
	logger   *logger.Logger
	workers  int
}

// NewEngine creates a scan engine
func NewEngine(
	cfg Config,
	universe contracts.UniverseProvider,
	market contracts.MarketDataProvider,
	ledger contracts.Ledger,
	log *logger.Logger,
	workers int,
) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		config:   cfg,
		universe: universe,
		market:   market,
		ledger:   ledger,
		logger:   log,
		workers:  workers,
	}
}

// ScanResult summarizes one scan invocation
type ScanResult struct {
	AsOf                time.Time `json:"as_of"`
	NewEntryAlerts      int       `json:"new_entry_alerts"`
	NewExitAlerts       int       `json:"new_exit_alerts"`
	SymbolErrors        int       `json:"symbol_errors"`
	InvariantViolations int       `json:"invariant_violations,omitempty"`
}

// RunDailyScan evaluates entry candidates across the universe and exit
// candidates across open positions for asOf. Entries and exits are both
// evaluated against the pre-scan open set, so a symbol never enters and
// exits within one invocation. Per-symbol failures are counted, logged and
// retried on the next invocation; only request-level problems (the ledger
// itself unreachable) fail the call.
func (e *Engine) RunDailyScan(ctx context.Context, asOf time.Time) (*ScanResult, error) {
	asOf = contracts.DateOnly(asOf)
	result := &ScanResult{AsOf: asOf}

	e.logger.WithField("as_of", asOf.Format("2006-01-02")).Info("Daily scan started")

	open, err := e.ledger.OpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open positions: %w", err)
	}

	openSet := make(map[string]struct{}, len(open))
	for _, pos := range open {
		openSet[pos.Symbol] = struct{}{}
	}

	e.scanEntries(ctx, asOf, openSet, result)
	e.scanExits(ctx, asOf, open, result)

	e.logger.WithFields(map[string]interface{}{
		"as_of":       asOf.Format("2006-01-02"),
		"new_entries": result.NewEntryAlerts,
		"new_exits":   result.NewExitAlerts,
		"errors":      result.SymbolErrors,
	}).Info("Daily scan complete")

	return result, nil
}

// scanEntries evaluates the entry rule for every universe symbol reporting
// earnings on asOf, excluding symbols that already hold an open position.
func (e *Engine) scanEntries(ctx context.Context, asOf time.Time, openSet map[string]struct{}, result *ScanResult) {
	snapshot, err := e.universe.Current(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Universe provider failed, skipping entry scan")
		result.SymbolErrors++
		return
	}
	if len(snapshot.Symbols) == 0 {
		e.logger.Warn("Universe is empty, skipping entry scan")
		return
	}

	earnings, err := e.market.EarningsSymbols(ctx, asOf)
	if err != nil {
		e.logger.WithError(err).Error("Earnings calendar fetch failed, skipping entry scan")
		result.SymbolErrors++
		return
	}

	// Entry candidates: universe members with earnings today and no open
	// position. Sorted so runs are deterministic.
	var candidates []string
	for _, symbol := range snapshot.Symbols {
		if _, ok := earnings[symbol]; !ok {
			continue
		}
		if _, ok := openSet[symbol]; ok {
			continue
		}
		candidates = append(candidates, symbol)
	}
	sort.Strings(candidates)

	e.logger.WithFields(map[string]interface{}{
		"universe":   len(snapshot.Symbols),
		"earnings":   len(earnings),
		"candidates": len(candidates),
	}).Info("Entry candidates resolved")

	var newAlerts, symbolErrors atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, symbol := range candidates {
		symbol := symbol
		g.Go(func() error {
			inserted, err := e.evaluateEntry(gctx, symbol, asOf)
			if err != nil {
				symbolErrors.Add(1)
				e.logger.WithError(err).WithField("symbol", symbol).Error("Entry evaluation failed")
				return nil // one symbol never aborts the rest
			}
			if inserted {
				newAlerts.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.NewEntryAlerts += int(newAlerts.Load())
	result.SymbolErrors += int(symbolErrors.Load())
}

// evaluateEntry applies the entry rule to a single symbol. Missing market
// data means "not eligible", not failure. Returns true when a new ENTRY
// alert was inserted.
func (e *Engine) evaluateEntry(ctx context.Context, symbol string, asOf time.Time) (bool, error) {
	closePx, prevPx, err := e.market.PriceAround(ctx, symbol, asOf)
	if contracts.IsDataUnavailable(err) {
		e.logger.WithField("symbol", symbol).Debug("No price data, skipping entry check")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("price lookup for %s: %w", symbol, err)
	}

	earningsReturn := EarningsReturn(closePx, prevPx)
	if !e.config.EntryQualifies(earningsReturn) {
		return false, nil
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"return":      earningsReturn.StringFixed(4),
		"entry_price": closePx.StringFixed(2),
	}).Info("Entry signal")

	now := time.Now().UTC()
	pos := contracts.Position{
		ID:         uuid.New(),
		Symbol:     symbol,
		EntryDate:  asOf,
		EntryPrice: closePx,
		Status:     contracts.PositionStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	alert := contracts.Alert{
		ID:        uuid.New(),
		EventKey:  EntryEventKey(symbol, asOf),
		Type:      contracts.AlertTypeEntry,
		Symbol:    symbol,
		AsOf:      asOf,
		Message:   RenderEntryMessage(symbol, asOf, earningsReturn, closePx),
		CreatedAt: now,
	}

	inserted, err := e.ledger.RecordEntry(ctx, pos, alert)
	if err != nil {
		return false, fmt.Errorf("record entry for %s: %w", symbol, err)
	}
	return inserted, nil
}

// scanExits applies the exit rules to the pre-scan open set
func (e *Engine) scanExits(ctx context.Context, asOf time.Time, open []contracts.Position, result *ScanResult) {
	e.logger.WithField("open_positions", len(open)).Info("Exit scan started")

	for _, pos := range open {
		inserted, err := e.evaluateExit(ctx, &pos, asOf)
		if err != nil {
			if contracts.IsInvariantViolation(err) {
				result.InvariantViolations++
				e.logger.WithError(err).WithField("symbol", pos.Symbol).Error("Exit scan invariant violation")
				continue
			}
			result.SymbolErrors++
			e.logger.WithError(err).WithField("symbol", pos.Symbol).Error("Exit evaluation failed")
			continue
		}
		if inserted {
			result.NewExitAlerts++
		}
	}
}

// evaluateExit applies stop-loss then time exit to one open position.
// Returns true when a new EXIT alert was inserted.
func (e *Engine) evaluateExit(ctx context.Context, pos *contracts.Position, asOf time.Time) (bool, error) {
	closePx, err := e.market.ClosePrice(ctx, pos.Symbol, asOf)
	if contracts.IsDataUnavailable(err) {
		e.logger.WithField("symbol", pos.Symbol).Debug("No price data, skipping exit check")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("price lookup for %s: %w", pos.Symbol, err)
	}

	decision := e.config.EvaluateExit(pos, closePx, asOf)
	if decision == nil {
		return false, nil
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":       pos.Symbol,
		"reason":       decision.Reason,
		"pnl":          decision.PnL.StringFixed(4),
		"holding_days": decision.HoldingDays,
	}).Info("Exit signal")

	now := time.Now().UTC()
	closed := *pos
	closed.Status = contracts.PositionStatusClosed
	closed.ExitDate = &asOf
	closed.ExitPrice = &closePx
	closed.ExitReason = &decision.Reason
	closed.UpdatedAt = now

	alert := contracts.Alert{
		ID:        uuid.New(),
		EventKey:  ExitEventKey(pos.Symbol, pos.EntryDate, asOf, decision.Reason),
		Type:      contracts.AlertTypeExit,
		Symbol:    pos.Symbol,
		AsOf:      asOf,
		Message:   RenderExitMessage(pos.Symbol, asOf, decision.Reason, decision.PnL, closePx, decision.HoldingDays),
		CreatedAt: now,
	}

	inserted, err := e.ledger.RecordExit(ctx, closed, alert)
	if err != nil {
		return false, err
	}
	return inserted, nil
}
