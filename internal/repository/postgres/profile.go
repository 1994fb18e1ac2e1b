package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	var email, phone, whatsapp sql.NullString
	var featuredUntil sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, phone, whatsapp, is_vendor, featured_until FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &email, &phone, &whatsapp, &p.IsVendor, &featuredUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("profile.get", err)
	}
	p.Email = stringPtr(email)
	p.Phone = stringPtr(phone)
	p.WhatsApp = stringPtr(whatsapp)
	if featuredUntil.Valid {
		p.FeaturedUntil = &featuredUntil.Time
	}
	return &p, nil
}

func (r *profileRepository) SetFeaturedUntil(ctx context.Context, id string, now, until time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET featured_until = $3
		 WHERE id = $1 AND (featured_until IS NULL OR featured_until <= $2)`, id, now, until)
	if err != nil {
		return storageErr("profile.featured", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("profile.featured", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, id).Scan(&exists); err != nil {
		return storageErr("profile.featured", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyExists
}

type applicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) CountByCandidateSince(ctx context.Context, candidateID string, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM applications WHERE candidate_id = $1 AND created_on >= $2`, candidateID, since).Scan(&n)
	return n, storageErr("applications.count", err)
}
