package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

const entryColumns = `t.id, t.user_id, t.type, t.credits_delta, t.balance_after, t.sku, t.amount_kes,
	t.reference, COALESCE(t.description, ''), t.created_on, s.id, s.spend_type, s.related_id`

const entryFrom = `FROM credit_transactions t LEFT JOIN credit_spends s ON s.transaction_id = t.id`

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var sku, reference, spendID, spendType, relatedID sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.Type, &e.CreditsDelta, &e.BalanceAfter, &sku, &e.AmountKES,
		&reference, &e.Description, &e.CreatedOn, &spendID, &spendType, &relatedID)
	if err != nil {
		return nil, err
	}
	e.SKU = stringPtr(sku)
	e.Reference = stringPtr(reference)
	e.SpendID = stringPtr(spendID)
	e.RelatedID = stringPtr(relatedID)
	if spendType.Valid {
		st := domain.SpendType(spendType.String)
		e.SpendType = &st
	}
	return &e, nil
}

func validateEntry(e *domain.LedgerEntry) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, e.Type)
	}
	if e.CreditsDelta == 0 || (e.Type.IsCredit() != (e.CreditsDelta > 0)) {
		return domain.ErrInvalidAmount
	}
	if e.Type == domain.TransactionTypeSpend && e.SpendType == nil {
		return fmt.Errorf("%w: spend entry without spend type", domain.ErrInvalidInput)
	}
	return nil
}

// entryTime stamps an entry appended under the wallet lock. wallets.updated_on
// holds the previous entry's time, so entries stay strictly increasing per
// account even when clocks of different servers disagree.
func entryTime(now, lastAppend time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(lastAppend) {
		now = lastAppend.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

// Append locks the wallet row for the duration of the transaction, so the
// balance check, the entry insert and the balance update see one snapshot.
func (r *ledgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) error {
	logger.EnterMethod("ledgerRepository.Append", "userID", e.UserID, "type", e.Type, "delta", e.CreditsDelta)
	if err := validateEntry(e); err != nil {
		logger.ExitMethodWithError("ledgerRepository.Append", err)
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("ledger.append", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, balance, created_on, updated_on) VALUES ($1, 0, $2, $2) ON CONFLICT (user_id) DO NOTHING`,
		e.UserID, time.Now().UTC()); err != nil {
		return storageErr("ledger.append", err)
	}

	var balance int64
	var lastAppend time.Time
	logger.DatabaseCall("SELECT FOR UPDATE", "wallets", "userID", e.UserID)
	if err := tx.QueryRowContext(ctx, `SELECT balance, updated_on FROM wallets WHERE user_id = $1 FOR UPDATE`, e.UserID).
		Scan(&balance, &lastAppend); err != nil {
		return storageErr("ledger.append", err)
	}
	now := entryTime(time.Now(), lastAppend)

	if e.Reference != nil {
		row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` `+entryFrom+` WHERE t.user_id = $1 AND t.reference = $2`, e.UserID, *e.Reference)
		existing, err := scanEntry(row)
		switch {
		case err == nil:
			*e = *existing
			logger.ExitMethod("ledgerRepository.Append", "duplicateReference", *e.Reference, "transactionID", e.ID)
			return domain.ErrDuplicateReference
		case !errors.Is(err, sql.ErrNoRows):
			return storageErr("ledger.append", err)
		}
	}

	if balance+e.CreditsDelta < 0 {
		err := &domain.InsufficientBalanceError{Balance: balance, Delta: e.CreditsDelta}
		logger.ExitMethod("ledgerRepository.Append", "userID", e.UserID, "rejected", err.Error())
		return err
	}

	e.ID = uuid.NewString()
	e.BalanceAfter = balance + e.CreditsDelta
	e.CreatedOn = now

	logger.DatabaseCall("INSERT", "credit_transactions", "userID", e.UserID, "transactionID", e.ID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (id, user_id, type, credits_delta, balance_after, sku, amount_kes, reference, description, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.Type, e.CreditsDelta, e.BalanceAfter, nullString(e.SKU), e.AmountKES, nullString(e.Reference), e.Description, e.CreatedOn)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return storageErr("ledger.append", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $2, updated_on = $3 WHERE user_id = $1`, e.UserID, e.BalanceAfter, now); err != nil {
		return storageErr("ledger.append", err)
	}

	if e.Type == domain.TransactionTypeSpend {
		spendID := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO credit_spends (id, user_id, transaction_id, spend_type, credits, related_id, description, created_on)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			spendID, e.UserID, e.ID, *e.SpendType, -e.CreditsDelta, nullString(e.RelatedID), e.Description, now)
		if err != nil {
			return storageErr("ledger.append", err)
		}
		e.SpendID = &spendID
	}

	if err := tx.Commit(); err != nil {
		return storageErr("ledger.append", err)
	}
	logger.DatabaseResult("APPEND", 1, nil, "transactionID", e.ID, "balanceAfter", e.BalanceAfter)
	logger.ExitMethod("ledgerRepository.Append", "transactionID", e.ID)
	return nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, storageErr("ledger.balance", err)
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` ` + entryFrom + ` WHERE t.user_id = $1 ORDER BY t.seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("ledger.history", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storageErr("ledger.history", err)
		}
		entries = append(entries, *e)
	}
	return entries, storageErr("ledger.history", rows.Err())
}

func (r *ledgerRepository) GetByReference(ctx context.Context, userID, reference string) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` `+entryFrom+` WHERE t.user_id = $1 AND t.reference = $2`, userID, reference)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("ledger.reference", err)
	}
	return e, nil
}

func (r *ledgerRepository) ListSpends(ctx context.Context, userID string, spendType domain.SpendType) ([]domain.CreditSpend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, transaction_id, spend_type, credits, related_id, COALESCE(description, ''), created_on
		 FROM credit_spends WHERE user_id = $1 AND spend_type = $2 ORDER BY created_on DESC`, userID, spendType)
	if err != nil {
		return nil, storageErr("ledger.spends", err)
	}
	defer rows.Close()

	var spends []domain.CreditSpend
	for rows.Next() {
		var s domain.CreditSpend
		var relatedID sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.TransactionID, &s.SpendType, &s.Credits, &relatedID, &s.Description, &s.CreatedOn); err != nil {
			return nil, storageErr("ledger.spends", err)
		}
		s.RelatedID = stringPtr(relatedID)
		spends = append(spends, s)
	}
	return spends, storageErr("ledger.spends", rows.Err())
}

func (r *ledgerRepository) ListBalanceMismatches(ctx context.Context) ([]domain.BalanceMismatch, error) {
	logger.DatabaseCall("SELECT", "wallets", "check", "balance reconciliation")
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.user_id, w.balance, COALESCE(SUM(t.credits_delta), 0) AS ledger_balance
		FROM wallets w
		LEFT JOIN credit_transactions t ON t.user_id = w.user_id
		GROUP BY w.user_id, w.balance
		HAVING w.balance <> COALESCE(SUM(t.credits_delta), 0)
		ORDER BY w.user_id`)
	if err != nil {
		return nil, storageErr("ledger.reconcile", err)
	}
	defer rows.Close()

	var out []domain.BalanceMismatch
	for rows.Next() {
		var m domain.BalanceMismatch
		if err := rows.Scan(&m.UserID, &m.Balance, &m.LedgerBalance); err != nil {
			return nil, storageErr("ledger.reconcile", err)
		}
		out = append(out, m)
	}
	return out, storageErr("ledger.reconcile", rows.Err())
}
