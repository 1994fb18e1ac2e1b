package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `l.id, l.employer_id, l.type, l.title, COALESCE(l.description, ''), COALESCE(l.category, ''),
	COALESCE(l.location, ''), l.pay_min, l.pay_max, l.pay_currency, to_char(l.start_date, 'YYYY-MM-DD'),
	COALESCE(l.duration, ''), COALESCE(l.contract_type, ''), COALESCE(l.workers_needed, 0),
	COALESCE(l.requirements, ''), l.status, l.created_on`

func listingDest(l *domain.Listing, payMin, payMax *sql.NullInt64, startDate *sql.NullString) []any {
	return []any{&l.ID, &l.EmployerID, &l.Type, &l.Title, &l.Description, &l.Category, &l.Location,
		payMin, payMax, &l.PayCurrency, startDate, &l.Duration, &l.ContractType, &l.WorkersNeeded,
		&l.Requirements, &l.Status, &l.CreatedOn}
}

func fillListing(l *domain.Listing, payMin, payMax sql.NullInt64, startDate sql.NullString) {
	if payMin.Valid {
		l.PayMin = &payMin.Int64
	}
	if payMax.Valid {
		l.PayMax = &payMax.Int64
	}
	l.StartDate = stringPtr(startDate)
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing, slot *domain.FeaturedSlot) error {
	logger.EnterMethod("listingRepository.Create", "listingID", l.ID, "employerID", l.EmployerID, "featured", slot != nil)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("listing.create", err)
	}
	defer tx.Rollback()

	logger.DatabaseCall("INSERT", "listings", "listingID", l.ID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO listings (id, employer_id, type, title, description, category, location, pay_min, pay_max,
		  pay_currency, start_date, duration, contract_type, workers_needed, requirements, status, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		l.ID, l.EmployerID, l.Type, l.Title, l.Description, l.Category, l.Location, nullInt(l.PayMin), nullInt(l.PayMax),
		l.PayCurrency, nullString(l.StartDate), l.Duration, l.ContractType, l.WorkersNeeded, l.Requirements, l.Status, l.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("listingRepository.Create", err)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return storageErr("listing.create", err)
	}

	if slot != nil {
		logger.DatabaseCall("INSERT", "featured_slots", "listingID", l.ID, "endsAt", slot.EndsAt)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO featured_slots (id, post_id, employer_id, label, starts_at, ends_at, spend_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			slot.ID, slot.PostID, slot.EmployerID, slot.Label, slot.StartsAt, slot.EndsAt, slot.SpendID)
		if err != nil {
			logger.ExitMethodWithError("listingRepository.Create", err)
			return storageErr("listing.create", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("listing.create", err)
	}
	logger.ExitMethod("listingRepository.Create", "listingID", l.ID)
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	var payMin, payMax sql.NullInt64
	var startDate sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, id).
		Scan(listingDest(&l, &payMin, &payMax, &startDate)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("listing.get", err)
	}
	fillListing(&l, payMin, payMax, startDate)
	return &l, nil
}

func (r *listingRepository) ListActiveFeatured(ctx context.Context, listingType domain.ListingType, now time.Time, limit int32) ([]domain.FeaturedListing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+`, f.label, f.ends_at
		 FROM featured_slots f JOIN listings l ON l.id = f.post_id
		 WHERE l.type = $1 AND l.status = 'active' AND f.starts_at <= $2 AND f.ends_at > $2
		 ORDER BY f.ends_at DESC LIMIT $3`, listingType, now, limit)
	if err != nil {
		return nil, storageErr("listing.featured", err)
	}
	defer rows.Close()

	out := []domain.FeaturedListing{}
	for rows.Next() {
		var fl domain.FeaturedListing
		var payMin, payMax sql.NullInt64
		var startDate sql.NullString
		dest := append(listingDest(&fl.Listing, &payMin, &payMax, &startDate), &fl.FeaturedLabel, &fl.FeaturedUntil)
		if err := rows.Scan(dest...); err != nil {
			return nil, storageErr("listing.featured", err)
		}
		fillListing(&fl.Listing, payMin, payMax, startDate)
		out = append(out, fl)
	}
	return out, storageErr("listing.featured", rows.Err())
}
