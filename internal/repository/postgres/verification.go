package postgres

import (
	"context"
	"database/sql"
	"errors"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type verificationRepository struct {
	db *sql.DB
}

func NewVerificationRepository(db *sql.DB) repository.VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) GetLatest(ctx context.Context, userID string, vt domain.VerificationType) (*domain.Verification, error) {
	var v domain.Verification
	var fileURL, notes, rejectReason sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, verification_type, file_url, notes, status, reject_reason, created_on, updated_on
		 FROM verifications WHERE user_id = $1 AND verification_type = $2
		 ORDER BY created_on DESC LIMIT 1`, userID, vt).
		Scan(&v.ID, &v.UserID, &v.Type, &fileURL, &notes, &v.Status, &rejectReason, &v.CreatedOn, &v.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("verification.get", err)
	}
	v.FileURL = stringPtr(fileURL)
	v.Notes = stringPtr(notes)
	v.RejectReason = stringPtr(rejectReason)
	return &v, nil
}

const insertVerification = `INSERT INTO verifications (id, user_id, verification_type, file_url, notes, status, created_on, updated_on)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Claim the bundle unless an unrefunded spend already holds it.
const claimBundle = `INSERT INTO verification_bundles (user_id, transaction_id, created_on) VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET transaction_id = EXCLUDED.transaction_id, created_on = EXCLUDED.created_on
	WHERE EXISTS (
		SELECT 1 FROM credit_transactions r
		WHERE r.user_id = verification_bundles.user_id AND r.reference = 'refund:' || verification_bundles.transaction_id
	)`

func (r *verificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	_, err := r.db.ExecContext(ctx, insertVerification,
		v.ID, v.UserID, v.Type, nullString(v.FileURL), nullString(v.Notes), v.Status, v.CreatedOn, v.UpdatedOn)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return storageErr("verification.create", err)
}

func (r *verificationRepository) CreatePaid(ctx context.Context, v *domain.Verification, transactionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("verification.create", err)
	}
	defer tx.Rollback()

	logger.DatabaseCall("UPSERT", "verification_bundles", "userID", v.UserID, "transactionID", transactionID)
	res, err := tx.ExecContext(ctx, claimBundle, v.UserID, transactionID, v.CreatedOn)
	if err != nil {
		return storageErr("verification.create", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("verification.create", err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}

	if _, err := tx.ExecContext(ctx, insertVerification,
		v.ID, v.UserID, v.Type, nullString(v.FileURL), nullString(v.Notes), v.Status, v.CreatedOn, v.UpdatedOn); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return storageErr("verification.create", err)
	}
	return storageErr("verification.create", tx.Commit())
}

func (r *verificationRepository) Resubmit(ctx context.Context, v *domain.Verification) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verifications SET status = 'pending', file_url = $2, notes = $3, reject_reason = NULL, updated_on = $4
		 WHERE id = $1 AND status = 'rejected'`,
		v.ID, nullString(v.FileURL), nullString(v.Notes), v.UpdatedOn)
	if err != nil {
		return storageErr("verification.resubmit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("verification.resubmit", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	v.Status = domain.VerificationPending
	v.RejectReason = nil
	return nil
}
