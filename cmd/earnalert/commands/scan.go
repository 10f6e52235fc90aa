package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/external/fmp"
	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/internal/strategy"
	"github.com/wonny/earnalert/internal/universe"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/database"
	"github.com/wonny/earnalert/pkg/httputil"
	"github.com/wonny/earnalert/pkg/logger"
	"github.com/wonny/earnalert/pkg/redis"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the daily scan once",
	Long: `Runs one daily scan for the given trading date.

This command:
- Resolves the S&P 500 universe
- Evaluates earnings-day drops for new entries
- Evaluates open positions for stop-loss and time exits
- Records positions and alerts exactly once per event

Re-running the same date is a safe no-op: duplicates are absorbed by
the ledger's uniqueness constraints.

Example:
  go run ./cmd/earnalert scan
  go run ./cmd/earnalert scan --as-of 2025-12-01`,
	RunE: runScan,
}

var (
	scanAsOf string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanAsOf, "as-of", "", "trading date to scan (YYYY-MM-DD, default today UTC)")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EarnAlert Daily Scan ===")

	// 1. Resolve scan date
	asOf := time.Now().UTC()
	if scanAsOf != "" {
		parsed, err := time.Parse("2006-01-02", scanAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD): %w", scanAsOf, err)
		}
		asOf = parsed
	}

	// 2. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 3. Initialize logger
	log := logger.New(cfg)

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 5. Connect to Redis (optional hot cache)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without hot cache")
		rdb = redis.NewDisabled()
	}
	defer rdb.Close()

	// 6. Wire up the engine
	httpClient := httputil.New(cfg, log)
	fmpClient := fmp.NewClient(cfg, httpClient, log)
	store := ledger.NewStore(db.Pool)
	universeRepo := universe.NewRepository(db.Pool)
	universeCache := redis.NewCache(rdb, "universe")
	universeProvider := universe.NewProvider(universeRepo, fmpClient, universeCache, cfg.Strategy.UniverseCacheTTL, log)

	strategyCfg, err := strategy.ConfigFrom(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}
	engine := strategy.NewEngine(strategyCfg, universeProvider, fmpClient, store, log, cfg.Strategy.ScanWorkers)

	// 7. Run the scan
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := engine.RunDailyScan(ctx, asOf)
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	fmt.Printf("\n✅ Scan complete for %s\n", asOf.Format("2006-01-02"))
	fmt.Printf("  New entry alerts: %d\n", result.NewEntryAlerts)
	fmt.Printf("  New exit alerts:  %d\n", result.NewExitAlerts)
	fmt.Printf("  Symbol errors:    %d\n", result.SymbolErrors)
	if result.InvariantViolations > 0 {
		fmt.Printf("  ⚠️  Invariant violations: %d\n", result.InvariantViolations)
	}

	return nil
}
