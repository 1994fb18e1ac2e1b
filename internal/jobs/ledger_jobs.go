package jobs

import (
	"context"
	"fmt"

	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/metrics"
)

// ReconcileBalances compares every wallet balance with the sum of its ledger
// entries. Mismatches are reported, never corrected.
func (jr *JobRunner) ReconcileBalances() error {
	return jr.runWithRecovery("ReconcileBalances", func(ctx context.Context) error {
		mismatches, err := jr.ledgerRepo.ListBalanceMismatches(ctx)
		if err != nil {
			return fmt.Errorf("list balance mismatches: %w", err)
		}
		metrics.BalanceMismatches.Set(float64(len(mismatches)))
		for _, m := range mismatches {
			logger.Error("Wallet balance disagrees with ledger",
				"user_id", m.UserID,
				"balance", m.Balance,
				"ledger_balance", m.LedgerBalance)
		}
		logger.Info("Balance reconciliation finished", "mismatches", len(mismatches))
		return nil
	})
}

// RollupMonthlySpending rebuilds the spending projection for the current and
// previous month from the ledger.
func (jr *JobRunner) RollupMonthlySpending() error {
	return jr.runWithRecovery("RollupMonthlySpending", func(ctx context.Context) error {
		now := jr.now().UTC()
		current := now.Format("2006-01")
		previous := now.AddDate(0, 0, -now.Day()).Format("2006-01")

		for _, month := range []string{previous, current} {
			rows, err := jr.spendingRepo.RebuildMonth(ctx, month)
			if err != nil {
				return fmt.Errorf("rebuild spending for %s: %w", month, err)
			}
			logger.Info("Rebuilt monthly spending", "month", month, "rows", rows)
		}
		return nil
	})
}
