// Package app assembles repositories and services from configuration. The
// server, the cron runner and walletctl share it.
package app

import (
	"database/sql"
	"fmt"

	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
	"zcc-wallet-backend/internal/repository/memory"
	"zcc-wallet-backend/internal/repository/postgres"
	"zcc-wallet-backend/internal/service"
)

// Repositories is the storage backing one process.
type Repositories struct {
	Ledger        repository.LedgerRepository
	Spending      repository.SpendingRepository
	Products      repository.ProductRepository
	Listings      repository.ListingRepository
	Unlocks       repository.UnlockRepository
	Verifications repository.VerificationRepository
	Profiles      repository.ProfileRepository
	Applications  repository.ApplicationRepository
	Notifications repository.NotificationRepository
	Audit         repository.AuditRepository
	Health        repository.Pinger
}

// App holds the wired services.
type App struct {
	Config *config.Config
	Repos  *Repositories

	Wallet        service.WalletService
	Catalog       service.CatalogService
	Listings      service.ListingService
	Unlocks       service.UnlockService
	Verifications service.VerificationService
	Quota         service.QuotaService
	Notifications service.NotificationService
	Audit         service.AuditService

	db *sql.DB
}

// New opens the configured store and wires every service over it.
func New(cfg *config.Config) (*App, error) {
	var (
		repos *Repositories
		db    *sql.DB
		err   error
	)
	switch cfg.Database.Driver {
	case "memory":
		repos, err = openMemory(cfg)
	default:
		repos, db, err = openPostgres(cfg)
	}
	if err != nil {
		return nil, err
	}
	a := Wire(cfg, repos)
	a.db = db
	return a, nil
}

// Wire builds the services over repos.
func Wire(cfg *config.Config, repos *Repositories) *App {
	w := cfg.Wallet
	auditSvc := service.NewAuditService(repos.Audit)
	noteSvc := service.NewNotificationService(repos.Notifications)
	walletSvc := service.NewWalletService(repos.Ledger, repos.Spending, auditSvc, service.WalletOptions{
		SignupCredits:       w.SignupCredits,
		VendorSignupCredits: w.VendorSignupCredits,
		MaxHistoryLimit:     w.MaxHistoryLimit,
	})
	catalogSvc := service.NewCatalogService(repos.Products, w.CatalogCacheTTL())
	runner := service.NewPurchaseRunner(walletSvc, noteSvc, w.RefundAttempts, w.RefundBackoff())

	return &App{
		Config:        cfg,
		Repos:         repos,
		Wallet:        walletSvc,
		Catalog:       catalogSvc,
		Listings:      service.NewListingService(repos.Listings, catalogSvc, runner, noteSvc, auditSvc),
		Unlocks:       service.NewUnlockService(repos.Unlocks, repos.Profiles, walletSvc, catalogSvc, runner, noteSvc, auditSvc),
		Verifications: service.NewVerificationService(repos.Verifications, repos.Profiles, repos.Ledger, walletSvc, catalogSvc, runner, noteSvc, auditSvc),
		Quota:         service.NewQuotaService(repos.Applications, w.FreeAppliesPerMonth),
		Notifications: noteSvc,
		Audit:         auditSvc,
	}
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openPostgres(cfg *config.Config) (*Repositories, *sql.DB, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns / 2)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	return &Repositories{
		Ledger:        store.LedgerRepository,
		Spending:      store.SpendingRepository,
		Products:      store.ProductRepository,
		Listings:      store.ListingRepository,
		Unlocks:       store.UnlockRepository,
		Verifications: store.VerificationRepository,
		Profiles:      store.ProfileRepository,
		Applications:  store.ApplicationRepository,
		Notifications: store.NotificationRepository,
		Audit:         store.AuditRepository,
		Health:        store,
	}, db, nil
}

func openMemory(cfg *config.Config) (*Repositories, error) {
	store := memory.NewStore()
	if path := cfg.Wallet.CatalogSeedFile; path != "" {
		products, err := config.LoadCatalogSeed(path)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			store.Products.Put(p)
		}
		logger.Info("Loaded catalog seed", "path", path, "products", len(products))
	}
	logger.Warn("Using in-memory storage; balances are lost on restart")
	return MemoryRepositories(store), nil
}

// MemoryRepositories exposes an in-memory store through the repository
// interfaces.
func MemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		Ledger:        store.Ledger,
		Spending:      store.Spending,
		Products:      store.Products,
		Listings:      store.Listings,
		Unlocks:       store.Unlocks,
		Verifications: store.Verifications,
		Profiles:      store.Profiles,
		Applications:  store.Applications,
		Notifications: store.Notifications,
		Audit:         store.Audit,
		Health:        store,
	}
}
