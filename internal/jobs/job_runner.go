package jobs

import (
	"context"
	"fmt"
	"time"

	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/metrics"
	"zcc-wallet-backend/internal/repository"
)

// JobRunner coordinates the ledger maintenance jobs
type JobRunner struct {
	ledgerRepo   repository.LedgerRepository
	spendingRepo repository.SpendingRepository
	config       *config.Config
	now          func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(ledgerRepo repository.LedgerRepository, spendingRepo repository.SpendingRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		ledgerRepo:   ledgerRepo,
		spendingRepo: spendingRepo,
		config:       cfg,
		now:          time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and records the
// outcome in the job metrics.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.JobRuns.WithLabelValues(jobName, result).Inc()
	}()

	logger.Info("Starting job", "job", jobName)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err = jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	if err := jr.ReconcileBalances(); err != nil {
		return err
	}
	return jr.RollupMonthlySpending()
}
