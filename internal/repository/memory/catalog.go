package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"zcc-wallet-backend/internal/domain"
)

type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewProductStore(products ...domain.Product) *ProductStore {
	s := &ProductStore{products: make(map[string]domain.Product)}
	for _, p := range products {
		s.products[p.SKU] = p
	}
	return s
}

// Put inserts or replaces a product.
func (s *ProductStore) Put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.SKU] = p
}

func (s *ProductStore) ListActive(ctx context.Context, scopes []domain.RoleScope) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		if len(scopes) > 0 && !slices.Contains(scopes, p.RoleScope) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (s *ProductStore) GetActiveBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[sku]
	if !ok || !p.Active {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
