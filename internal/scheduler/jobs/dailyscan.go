package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/earnalert/internal/strategy"
	"github.com/wonny/earnalert/pkg/logger"
)

// DailyScanJob runs the entry/exit scan for the current trading date on a
// cron schedule. The external HTTP trigger stays the primary surface; this
// job exists for deployments without an external scheduler.
type DailyScanJob struct {
	engine   *strategy.Engine
	schedule string
	logger   *logger.Logger
}

// NewDailyScanJob creates the daily scan job
func NewDailyScanJob(engine *strategy.Engine, schedule string, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		engine:   engine,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron expression
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan for today (UTC)
func (j *DailyScanJob) Run(ctx context.Context) error {
	asOf := time.Now().UTC()

	result, err := j.engine.RunDailyScan(ctx, asOf)
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"as_of":       result.AsOf.Format("2006-01-02"),
		"new_entries": result.NewEntryAlerts,
		"new_exits":   result.NewExitAlerts,
		"errors":      result.SymbolErrors,
	}).Info("Scheduled scan finished")

	return nil
}
