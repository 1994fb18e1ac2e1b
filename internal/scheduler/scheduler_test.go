package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/jobs"
	"zcc-wallet-backend/internal/repository/memory"
)

func newRunner(cfg config.SchedulerConfig) *jobs.JobRunner {
	store := memory.NewStore()
	return jobs.NewJobRunner(store.Ledger, store.Spending, &config.Config{Scheduler: cfg})
}

func TestNewScheduler(t *testing.T) {
	s, err := NewScheduler(newRunner(config.SchedulerConfig{
		ReconcileBalances:     "0 15 * * * *",
		RollupMonthlySpending: "0 30 1 * * *",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	_, err := NewScheduler(newRunner(config.SchedulerConfig{
		ReconcileBalances:     "every hour",
		RollupMonthlySpending: "0 30 1 * * *",
	}))
	assert.ErrorContains(t, err, "ReconcileBalances")
}
