package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/earnalert/internal/api"
	"github.com/wonny/earnalert/internal/api/handlers"
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

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Exposes the daily scan trigger
- Exposes the notification dispatcher surface

Endpoints:
  GET  /health                    - Health check
  POST /api/jobs/daily            - Trigger the daily scan (idempotent per as_of)
  GET  /api/alerts/pending        - List undelivered alerts
  POST /api/alerts/{id}/mark-sent - Mark an alert delivered
  GET  /api/positions             - List positions

Example:
  go run ./cmd/earnalert api
  go run ./cmd/earnalert api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EarnAlert API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional hot cache)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without hot cache")
		rdb = redis.NewDisabled()
	}
	defer rdb.Close()

	// 5. Create HTTP client and vendor client
	httpClient := httputil.New(cfg, log)
	fmpClient := fmp.NewClient(cfg, httpClient, log)

	// 6. Create position/alert ledger
	store := ledger.NewStore(db.Pool)

	// 7. Create universe provider
	universeRepo := universe.NewRepository(db.Pool)
	universeCache := redis.NewCache(rdb, "universe")
	universeProvider := universe.NewProvider(universeRepo, fmpClient, universeCache, cfg.Strategy.UniverseCacheTTL, log)

	// 8. Create scan engine
	strategyCfg, err := strategy.ConfigFrom(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}
	engine := strategy.NewEngine(strategyCfg, universeProvider, fmpClient, store, log, cfg.Strategy.ScanWorkers)

	// 9. Create handlers
	scanHandler := handlers.NewScanHandler(engine, log)
	alertsHandler := handlers.NewAlertsHandler(store, log)
	positionsHandler := handlers.NewPositionsHandler(store, log)

	// 10. Create router
	router := api.NewRouter(scanHandler, alertsHandler, positionsHandler, log)

	// 11. Create server
	server := api.New(cfg, log, router)

	// 12. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/jobs/daily?as_of=YYYY-MM-DD")
	fmt.Println("  GET  /api/alerts/pending")
	fmt.Println("  POST /api/alerts/{id}/mark-sent")
	fmt.Println("  GET  /api/positions")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
