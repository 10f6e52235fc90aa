package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/database"
	"github.com/wonny/earnalert/pkg/logger"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and acknowledge alerts",
	Long: `Inspects the alert outbox and acknowledges deliveries.

Subcommands:
  pending   - List undelivered alerts (oldest first)
  mark-sent - Mark an alert as delivered

Example:
  go run ./cmd/earnalert alerts pending
  go run ./cmd/earnalert alerts pending --limit 50
  go run ./cmd/earnalert alerts mark-sent 6e1f0a1c-...`,
}

// alertsPendingCmd represents the pending subcommand
var alertsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List undelivered alerts",
	RunE:  runAlertsPending,
}

// alertsMarkSentCmd represents the mark-sent subcommand
var alertsMarkSentCmd = &cobra.Command{
	Use:   "mark-sent <alert-id>",
	Short: "Mark an alert as delivered",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsMarkSent,
}

var (
	alertsLimit int
)

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsPendingCmd)
	alertsCmd.AddCommand(alertsMarkSentCmd)

	// Flags
	alertsPendingCmd.Flags().IntVar(&alertsLimit, "limit", 200, "maximum number of alerts to list")
}

func runAlertsPending(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := ledger.NewStore(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alerts, err := store.Pending(ctx, alertsLimit)
	if err != nil {
		return fmt.Errorf("list pending alerts: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Println("No pending alerts")
		return nil
	}

	fmt.Printf("Pending alerts: %d\n\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("─── %s [%s] %s %s\n", a.ID, a.Type, a.Symbol, a.AsOf.Format("2006-01-02"))
		fmt.Println(a.Message)
		fmt.Println()
	}

	log.WithField("count", len(alerts)).Debug("Listed pending alerts")
	return nil
}

func runAlertsMarkSent(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid alert id %q: %w", args[0], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := ledger.NewStore(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sentAt, err := store.MarkSent(ctx, id)
	if err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}

	fmt.Printf("✅ Alert %s marked sent at %s\n", id, sentAt.Format(time.RFC3339))
	return nil
}
