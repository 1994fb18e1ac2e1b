package memory

import "context"

// Store mirrors postgres.Store with in-memory repositories.
type Store struct {
	Ledger        *LedgerStore
	Spending      *SpendingStore
	Products      *ProductStore
	Listings      *ListingStore
	Unlocks       *UnlockStore
	Verifications *VerificationStore
	Profiles      *ProfileStore
	Applications  *ApplicationStore
	Notifications *NotificationStore
	Audit         *AuditStore
}

func NewStore() *Store {
	ledger := NewLedgerStore()
	return &Store{
		Ledger:        ledger,
		Spending:      NewSpendingStore(ledger),
		Products:      NewProductStore(),
		Listings:      NewListingStore(),
		Unlocks:       NewUnlockStore(),
		Verifications: NewVerificationStore(ledger),
		Profiles:      NewProfileStore(),
		Applications:  NewApplicationStore(),
		Notifications: NewNotificationStore(),
		Audit:         NewAuditStore(),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
