package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/metrics"
	"zcc-wallet-backend/internal/repository"
)

// TopupOptions describes where credits come from.
type TopupOptions struct {
	SKU         *string
	AmountKES   decimal.NullDecimal
	Reference   *string
	Type        domain.TransactionType // defaults to topup
	Description string
	ActorUserID string // operator granting credits, if not the owner
}

// WalletOptions holds the wallet's tunable amounts.
type WalletOptions struct {
	SignupCredits       int64
	VendorSignupCredits int64
	MaxHistoryLimit     int32
}

type walletService struct {
	ledgerRepo   repository.LedgerRepository
	spendingRepo repository.SpendingRepository
	auditSvc     AuditService
	opts         WalletOptions
}

func NewWalletService(
	ledgerRepo repository.LedgerRepository,
	spendingRepo repository.SpendingRepository,
	auditSvc AuditService,
	opts WalletOptions,
) WalletService {
	if opts.MaxHistoryLimit <= 0 {
		opts.MaxHistoryLimit = 100
	}
	return &walletService{
		ledgerRepo:   ledgerRepo,
		spendingRepo: spendingRepo,
		auditSvc:     auditSvc,
		opts:         opts,
	}
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, domain.ErrInvalidInput
	}
	return s.ledgerRepo.GetBalance(ctx, userID)
}

func (s *walletService) Topup(ctx context.Context, userID string, amount int64, opts TopupOptions) (res *domain.TopupResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWallet("topup", start, err) }()

	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	txType := opts.Type
	if txType == "" {
		txType = domain.TransactionTypeTopup
	}
	if !txType.IsCredit() {
		return nil, fmt.Errorf("%w: %q is not a credit type", domain.ErrInvalidInput, txType)
	}

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("%s of %d credits", txType, amount)
	}
	entry := &domain.LedgerEntry{
		UserID:       userID,
		Type:         txType,
		CreditsDelta: amount,
		SKU:          opts.SKU,
		AmountKES:    opts.AmountKES,
		Reference:    opts.Reference,
		Description:  description,
	}

	err = s.ledgerRepo.Append(ctx, entry)
	if errors.Is(err, domain.ErrDuplicateReference) {
		logger.Info("Top-up reference already applied", "userID", userID, "reference", *opts.Reference, "transactionID", entry.ID)
		return &domain.TopupResult{Balance: entry.BalanceAfter, TransactionID: entry.ID, Duplicate: true}, nil
	}
	if err != nil {
		logger.Error("Top-up failed", "userID", userID, "amount", amount, "error", err)
		return nil, err
	}

	metrics.CreditsMoved.WithLabelValues(string(txType)).Add(float64(amount))
	actor := opts.ActorUserID
	if actor == "" {
		actor = userID
	}
	action := domain.AuditCreditsTopup
	switch {
	case txType == domain.TransactionTypeRefund:
		action = domain.AuditCreditsRefund
	case opts.ActorUserID != "" && opts.ActorUserID != userID:
		action = domain.AuditOperatorGrant
	}
	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       action,
		ResourceType: "credit_transaction",
		ResourceID:   entry.ID,
		ActorUserID:  actor,
		Details: map[string]any{
			"user_id":   userID,
			"credits":   amount,
			"type":      string(txType),
			"reference": deref(opts.Reference),
			"balance":   entry.BalanceAfter,
		},
	})
	return &domain.TopupResult{Balance: entry.BalanceAfter, TransactionID: entry.ID}, nil
}

func (s *walletService) Spend(ctx context.Context, userID string, amount int64, spendType domain.SpendType, relatedID *string, description string) (res *domain.SpendResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWallet("spend", start, err) }()

	if userID == "" || spendType == "" {
		return nil, domain.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	entry := &domain.LedgerEntry{
		UserID:       userID,
		Type:         domain.TransactionTypeSpend,
		CreditsDelta: -amount,
		Description:  description,
		SpendType:    &spendType,
		RelatedID:    relatedID,
	}
	err = s.ledgerRepo.Append(ctx, entry)
	var short *domain.InsufficientBalanceError
	if errors.As(err, &short) {
		logger.Info("Spend rejected for insufficient credits", "userID", userID, "balance", short.Balance, "required", amount)
		return nil, &domain.InsufficientCreditsError{Balance: short.Balance, Required: amount}
	}
	if err != nil {
		logger.Error("Spend failed", "userID", userID, "amount", amount, "spendType", spendType, "error", err)
		return nil, err
	}

	metrics.CreditsMoved.WithLabelValues(string(domain.TransactionTypeSpend)).Add(float64(amount))
	month := entry.CreatedOn.UTC().Format("2006-01")
	if err := s.spendingRepo.Increment(ctx, userID, month, spendType, amount); err != nil {
		logger.Warn("Failed to update monthly spending", "userID", userID, "month", month, "error", err)
	}
	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       domain.AuditCreditsSpend,
		ResourceType: "credit_transaction",
		ResourceID:   entry.ID,
		ActorUserID:  userID,
		Details: map[string]any{
			"credits":    amount,
			"spend_type": string(spendType),
			"related_id": deref(relatedID),
			"balance":    entry.BalanceAfter,
		},
	})

	return &domain.SpendResult{
		Balance:       entry.BalanceAfter,
		TransactionID: entry.ID,
		SpendID:       deref(entry.SpendID),
		CreditsSpent:  amount,
		SpendType:     spendType,
		SpentOn:       entry.CreatedOn,
	}, nil
}

func (s *walletService) Refund(ctx context.Context, userID string, spend *domain.SpendResult, reason string) (*domain.TopupResult, error) {
	if spend == nil || spend.TransactionID == "" {
		return nil, domain.ErrInvalidInput
	}
	ref := domain.RefundReference(spend.TransactionID)
	res, err := s.Topup(ctx, userID, spend.CreditsSpent, TopupOptions{
		Type:        domain.TransactionTypeRefund,
		Reference:   &ref,
		Description: fmt.Sprintf("Refund: %s", reason),
	})
	if err != nil || res.Duplicate || spend.SpendType == "" || spend.SpentOn.IsZero() {
		return res, err
	}

	month := spend.SpentOn.UTC().Format("2006-01")
	if err := s.spendingRepo.Increment(ctx, userID, month, spend.SpendType, -spend.CreditsSpent); err != nil {
		logger.Warn("Failed to take refund off monthly spending", "userID", userID, "month", month, "error", err)
	}
	return res, nil
}

func (s *walletService) TransactionHistory(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > s.opts.MaxHistoryLimit {
		limit = s.opts.MaxHistoryLimit
	}
	return s.ledgerRepo.ListEntries(ctx, userID, limit)
}

// InitializeWallet grants the one-time signup bonus. The fixed reference makes
// repeated onboarding calls return the original grant.
func (s *walletService) InitializeWallet(ctx context.Context, userID string, isVendor bool) (*domain.TopupResult, error) {
	credits := s.opts.SignupCredits
	if isVendor {
		credits = s.opts.VendorSignupCredits
	}
	if credits <= 0 {
		balance, err := s.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &domain.TopupResult{Balance: balance}, nil
	}
	ref := domain.SignupBonusReference
	return s.Topup(ctx, userID, credits, TopupOptions{
		Type:        domain.TransactionTypeBonus,
		Reference:   &ref,
		Description: "Welcome bonus credits",
	})
}

func (s *walletService) MonthlySpending(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error) {
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	return s.spendingRepo.ListByUser(ctx, userID, month)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
