package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/metrics"
)

// Purchase is one compound spend: credits paid for a dependent record.
type Purchase struct {
	Operation   string
	UserID      string
	Credits     int64
	SpendType   domain.SpendType
	RelatedID   *string
	Description string
}

// DependentWrite creates the record a purchase paid for. It receives the
// spend so the record can carry its spend id.
type DependentWrite func(ctx context.Context, spend *domain.SpendResult) error

// PurchaseRunner runs spend, then the dependent write, then a compensating
// refund when the write fails. Every compound operation goes through it.
type PurchaseRunner struct {
	wallet   WalletService
	notifier NotificationService
	attempts int
	backoff  time.Duration
}

func NewPurchaseRunner(wallet WalletService, notifier NotificationService, refundAttempts int, backoff time.Duration) *PurchaseRunner {
	if refundAttempts < 1 {
		refundAttempts = 1
	}
	return &PurchaseRunner{wallet: wallet, notifier: notifier, attempts: refundAttempts, backoff: backoff}
}

// Run returns the spend on success. A failed spend is returned unchanged with
// nothing to undo. A failed write returns *domain.DependentWriteFailedError
// whose Refunded field tells whether the credits are back.
func (r *PurchaseRunner) Run(ctx context.Context, p Purchase, write DependentWrite) (*domain.SpendResult, error) {
	logger.EnterMethod("PurchaseRunner.Run", "operation", p.Operation, "userID", p.UserID, "credits", p.Credits)

	spend, err := r.wallet.Spend(ctx, p.UserID, p.Credits, p.SpendType, p.RelatedID, p.Description)
	if err != nil {
		logger.ExitMethodWithError("PurchaseRunner.Run", err, "stage", "spend")
		return nil, err
	}

	werr := write(ctx, spend)
	if werr == nil {
		logger.ExitMethod("PurchaseRunner.Run", "transactionID", spend.TransactionID, "balance", spend.Balance)
		return spend, nil
	}

	logger.Warn("Dependent write failed after spend, refunding",
		"operation", p.Operation, "userID", p.UserID, "transactionID", spend.TransactionID, "error", werr)
	refunded := r.compensate(ctx, p, spend)
	return nil, &domain.DependentWriteFailedError{
		Operation: p.Operation,
		Credits:   p.Credits,
		Refunded:  refunded,
		Cause:     werr,
	}
}

// compensate retries the refund with linear backoff. It ignores cancellation
// of the caller's context.
func (r *PurchaseRunner) compensate(ctx context.Context, p Purchase, spend *domain.SpendResult) bool {
	ctx = context.WithoutCancel(ctx)
	reason := fmt.Sprintf("%s could not complete", p.Operation)

	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var res *domain.TopupResult
		res, err = r.wallet.Refund(ctx, p.UserID, spend, reason)
		if err == nil {
			metrics.Compensations.WithLabelValues(p.Operation, "refunded").Inc()
			logger.Compensation(p.Operation, p.UserID, res.TransactionID, nil)
			r.notifier.Notify(ctx, &domain.Notification{
				RecipientUserID: p.UserID,
				Type:            domain.NotificationPurchaseRefunded,
				Title:           "Purchase refunded",
				Body:            fmt.Sprintf("Your purchase could not complete. %d credits were returned to your wallet.", p.Credits),
				RelatedType:     "credit_transaction",
				RelatedID:       spend.TransactionID,
			})
			return true
		}
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidAmount) {
			break
		}
		if attempt < r.attempts && r.backoff > 0 {
			time.Sleep(r.backoff * time.Duration(attempt))
		}
	}

	metrics.Compensations.WithLabelValues(p.Operation, "failed").Inc()
	logger.Compensation(p.Operation, p.UserID, spend.TransactionID, err)
	return false
}
