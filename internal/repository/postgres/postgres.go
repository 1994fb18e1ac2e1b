package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"zcc-wallet-backend/internal/repository"
)

// Store bundles every repository over one connection pool.
type Store struct {
	db *sql.DB
	repository.LedgerRepository
	repository.SpendingRepository
	repository.ProductRepository
	repository.ListingRepository
	repository.UnlockRepository
	repository.VerificationRepository
	repository.ProfileRepository
	repository.ApplicationRepository
	repository.NotificationRepository
	repository.AuditRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		LedgerRepository:       NewLedgerRepository(db),
		SpendingRepository:     NewSpendingRepository(db),
		ProductRepository:      NewProductRepository(db),
		ListingRepository:      NewListingRepository(db),
		UnlockRepository:       NewUnlockRepository(db),
		VerificationRepository: NewVerificationRepository(db),
		ProfileRepository:      NewProfileRepository(db),
		ApplicationRepository:  NewApplicationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		AuditRepository:        NewAuditRepository(db),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
