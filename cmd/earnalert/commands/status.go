package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/database"
	"github.com/wonny/earnalert/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Long: `Shows a snapshot of system health and ledger state.

Checks:
- Database connectivity and pool stats
- Redis connectivity (hot cache)
- Open position count
- Pending alert count

Example:
  go run ./cmd/earnalert status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EarnAlert Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// 2. Database health
	db, err := database.New(cfg)
	if err != nil {
		fmt.Println("\n❌ Database: unreachable")
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil || !health.Healthy {
		fmt.Println("\n❌ Database: unhealthy")
		if err != nil {
			return fmt.Errorf("database health check: %w", err)
		}
		return fmt.Errorf("database health check: %s", health.Error)
	}
	fmt.Printf("\n✅ Database: healthy (%v)\n", health.ResponseTime)
	fmt.Printf("   Connections: %d total / %d idle\n", health.Stats.TotalConns, health.Stats.IdleConns)

	// 3. Redis health
	rdb, err := redis.New(cfg)
	switch {
	case err != nil:
		fmt.Println("⚠️  Redis: unreachable (hot cache disabled)")
	case !rdb.Enabled():
		fmt.Println("ℹ️  Redis: disabled")
	default:
		fmt.Println("✅ Redis: healthy")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 4. Ledger snapshot
	store := ledger.NewStore(db.Pool)

	open, err := store.Positions(ctx, contracts.PositionStatusOpen)
	if err != nil {
		return fmt.Errorf("count open positions: %w", err)
	}

	pending, err := store.Pending(ctx, 500)
	if err != nil {
		return fmt.Errorf("count pending alerts: %w", err)
	}

	fmt.Println("\nLedger:")
	fmt.Printf("  Open positions: %d\n", len(open))
	fmt.Printf("  Pending alerts: %d\n", len(pending))

	return nil
}
