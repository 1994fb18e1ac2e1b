package postgres

import (
	"context"
	"database/sql"
	"errors"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type unlockRepository struct {
	db *sql.DB
}

func NewUnlockRepository(db *sql.DB) repository.UnlockRepository {
	return &unlockRepository{db: db}
}

func (r *unlockRepository) Get(ctx context.Context, employerID, candidateID string) (*domain.ContactUnlock, error) {
	var u domain.ContactUnlock
	var postID, applicationID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, employer_id, candidate_id, post_id, application_id, spend_id, unlocked_at
		 FROM contact_unlocks WHERE employer_id = $1 AND candidate_id = $2`, employerID, candidateID).
		Scan(&u.ID, &u.EmployerID, &u.CandidateID, &postID, &applicationID, &u.SpendID, &u.UnlockedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("unlock.get", err)
	}
	u.PostID = stringPtr(postID)
	u.ApplicationID = stringPtr(applicationID)
	return &u, nil
}

func (r *unlockRepository) Create(ctx context.Context, u *domain.ContactUnlock) error {
	logger.DatabaseCall("INSERT", "contact_unlocks", "employerID", u.EmployerID, "candidateID", u.CandidateID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_unlocks (id, employer_id, candidate_id, post_id, application_id, spend_id, unlocked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.EmployerID, u.CandidateID, nullString(u.PostID), nullString(u.ApplicationID), u.SpendID, u.UnlockedAt)
	logger.DatabaseResult("INSERT", 1, err, "unlockID", u.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return storageErr("unlock.create", err)
}
