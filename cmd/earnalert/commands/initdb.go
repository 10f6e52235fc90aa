package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/database"
	"github.com/wonny/earnalert/pkg/logger"
)

// initDBCmd represents the init-db command
var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create database schema",
	Long: `Creates the database schema if it does not exist.

Tables:
- positions      (unique per symbol + entry date)
- alerts         (unique per event key)
- symbols_cache  (durable universe snapshot)

The statements are idempotent, re-running is safe.

Example:
  go run ./cmd/earnalert init-db`,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EarnAlert DB Init ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Apply schema
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ledger.EnsureSchema(ctx, db.Pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	fmt.Println("\n✅ Schema is up to date")
	fmt.Println("\nTables:")
	fmt.Println("  positions")
	fmt.Println("  alerts")
	fmt.Println("  symbols_cache")

	return nil
}
