package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/external/fmp"
	"github.com/wonny/earnalert/internal/ledger"
	"github.com/wonny/earnalert/internal/scheduler"
	"github.com/wonny/earnalert/internal/scheduler/jobs"
	"github.com/wonny/earnalert/internal/strategy"
	"github.com/wonny/earnalert/internal/universe"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/database"
	"github.com/wonny/earnalert/pkg/httputil"
	"github.com/wonny/earnalert/pkg/logger"
	"github.com/wonny/earnalert/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scan scheduler",
	Long: `Starts the scheduler daemon or runs registered jobs.

Registered jobs:
- daily_scan: runs the daily scan after US market close (SCAN_SCHEDULE)

Subcommands:
  start - Start the scheduler daemon
  run   - Run a registered job immediately

Example:
  go run ./cmd/earnalert scheduler start
  go run ./cmd/earnalert scheduler run daily_scan`,
}

// schedulerStartCmd represents the start subcommand
var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	Long: `Starts the scheduler and registers all jobs.

The daemon keeps running until interrupted. Failed jobs are retried
up to 3 times with a fixed delay; a scan retry is safe because the
ledger absorbs duplicates.

Example:
  go run ./cmd/earnalert scheduler start`,
	RunE: runSchedulerStart,
}

// schedulerRunCmd represents the run subcommand
var schedulerRunCmd = &cobra.Command{
	Use:   "run <job-name>",
	Short: "Run a registered job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler wires the scheduler with all registered jobs.
func buildScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional hot cache)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without hot cache")
		rdb = redis.NewDisabled()
	}

	cleanup := func() {
		_ = rdb.Close()
		db.Close()
	}

	// 5. Wire up the engine
	httpClient := httputil.New(cfg, log)
	fmpClient := fmp.NewClient(cfg, httpClient, log)
	store := ledger.NewStore(db.Pool)
	universeRepo := universe.NewRepository(db.Pool)
	universeCache := redis.NewCache(rdb, "universe")
	universeProvider := universe.NewProvider(universeRepo, fmpClient, universeCache, cfg.Strategy.UniverseCacheTTL, log)

	strategyCfg, err := strategy.ConfigFrom(cfg.Strategy)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("strategy config: %w", err)
	}
	engine := strategy.NewEngine(strategyCfg, universeProvider, fmpClient, store, log, cfg.Strategy.ScanWorkers)

	// 6. Create scheduler and register jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyScanJob(engine, cfg.ScanSchedule, log)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register daily scan job: %w", err)
	}

	return sched, cleanup, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EarnAlert Scheduler ===")

	sched, cleanup, err := buildScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	sched.Start()
	defer sched.Stop()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	fmt.Println("  daily_scan")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("=== EarnAlert Scheduler: run %s ===\n", jobName)

	sched, cleanup, err := buildScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job %s: %w", jobName, err)
	}

	fmt.Printf("\n✅ Job %s completed\n", jobName)
	return nil
}
