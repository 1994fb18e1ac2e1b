package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type catalogService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
}

// NewCatalogService caches listings and action prices for ttl. A zero ttl
// disables caching.
func NewCatalogService(productRepo repository.ProductRepository, ttl time.Duration) CatalogService {
	s := &catalogService{productRepo: productRepo}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *catalogService) ListProducts(ctx context.Context, scope domain.RoleScope) (*domain.ProductListing, error) {
	key := "products:" + string(scope)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(*domain.ProductListing), nil
		}
	}

	products, err := s.productRepo.ListActive(ctx, scope.Scopes())
	if err != nil {
		return nil, err
	}
	listing := &domain.ProductListing{Packs: []domain.Product{}, Actions: []domain.Product{}}
	for _, p := range products {
		if p.IsAction() {
			listing.Actions = append(listing.Actions, p)
		} else {
			listing.Packs = append(listing.Packs, p)
		}
	}
	if s.cache != nil {
		s.cache.SetDefault(key, listing)
	}
	return listing, nil
}

func (s *catalogService) ActionCost(ctx context.Context, sku domain.ActionSKU) (int64, error) {
	key := "cost:" + string(sku)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(int64), nil
		}
	}

	cost, err := s.lookupCost(ctx, sku)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, cost)
	}
	return cost, nil
}

func (s *catalogService) lookupCost(ctx context.Context, sku domain.ActionSKU) (int64, error) {
	p, err := s.productRepo.GetActiveBySKU(ctx, string(sku))
	switch {
	case err == nil && p.CreditsAmount <= 0:
		logger.Error("Catalog action has no positive cost", "sku", sku, "credits", p.CreditsAmount)
		return 0, fmt.Errorf("%w: catalog prices %s at %d credits", domain.ErrInvalidAmount, sku, p.CreditsAmount)
	case err == nil:
		return p.CreditsAmount, nil
	case !errors.Is(err, domain.ErrNotFound):
		// A storage failure is not a missing row.
		return 0, err
	}
	cost, ok := domain.DefaultActionCosts[sku]
	if !ok {
		return 0, domain.ErrNotFound
	}
	logger.Debug("Using default action cost", "sku", sku, "credits", cost)
	return cost, nil
}
