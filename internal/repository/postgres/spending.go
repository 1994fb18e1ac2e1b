package postgres

import (
	"context"
	"database/sql"
	"time"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type spendingRepository struct {
	db *sql.DB
}

func NewSpendingRepository(db *sql.DB) repository.SpendingRepository {
	return &spendingRepository{db: db}
}

// Increment is a single upsert, so concurrent spends in the same month add up
// instead of overwriting each other.
func (r *spendingRepository) Increment(ctx context.Context, userID, month string, spendType domain.SpendType, credits int64) error {
	logger.DatabaseCall("UPSERT", "monthly_spending", "userID", userID, "month", month, "spendType", spendType)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_spending (user_id, month, spend_type, credits, updated_on)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, month, spend_type)
		DO UPDATE SET credits = monthly_spending.credits + EXCLUDED.credits, updated_on = EXCLUDED.updated_on`,
		userID, month, spendType, credits, time.Now().UTC())
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", n, err)
	return storageErr("spending.increment", err)
}

func (r *spendingRepository) RebuildMonth(ctx context.Context, month string) (int64, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	end := start.AddDate(0, 1, 0)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("spending.rebuild", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_spending WHERE month = $1`, month); err != nil {
		return 0, storageErr("spending.rebuild", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_spending (user_id, month, spend_type, credits, updated_on)
		SELECT s.user_id, $1, s.spend_type, SUM(s.credits), $4
		FROM credit_spends s
		WHERE s.created_on >= $2 AND s.created_on < $3
		  AND NOT EXISTS (
		    SELECT 1 FROM credit_transactions r
		    WHERE r.user_id = s.user_id AND r.reference = 'refund:' || s.transaction_id::text)
		GROUP BY s.user_id, s.spend_type`,
		month, start, end, time.Now().UTC())
	if err != nil {
		return 0, storageErr("spending.rebuild", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("spending.rebuild", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("spending.rebuild", err)
	}
	logger.DatabaseResult("REBUILD", n, nil, "month", month)
	return n, nil
}

func (r *spendingRepository) ListByUser(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, month, spend_type, credits, updated_on FROM monthly_spending
		 WHERE user_id = $1 AND month = $2 ORDER BY spend_type`, userID, month)
	if err != nil {
		return nil, storageErr("spending.list", err)
	}
	defer rows.Close()

	var out []domain.MonthlySpending
	for rows.Next() {
		var m domain.MonthlySpending
		if err := rows.Scan(&m.UserID, &m.Month, &m.SpendType, &m.Credits, &m.UpdatedOn); err != nil {
			return nil, storageErr("spending.list", err)
		}
		out = append(out, m)
	}
	return out, storageErr("spending.list", rows.Err())
}
