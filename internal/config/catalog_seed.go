package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"zcc-wallet-backend/internal/domain"
)

type seedProduct struct {
	SKU           string         `yaml:"sku"`
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	CreditsAmount int64          `yaml:"credits_amount"`
	PriceKES      string         `yaml:"price_kes"`
	RoleScope     string         `yaml:"role_scope"`
	Active        *bool          `yaml:"active"`
	SortOrder     int32          `yaml:"sort_order"`
	Metadata      map[string]any `yaml:"metadata"`
}

// LoadCatalogSeed reads product rows for the in-memory catalog.
func LoadCatalogSeed(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	return ParseCatalogSeed(data)
}

func ParseCatalogSeed(data []byte) ([]domain.Product, error) {
	var doc struct {
		Products []seedProduct `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	products := make([]domain.Product, 0, len(doc.Products))
	for _, sp := range doc.Products {
		if sp.SKU == "" {
			return nil, fmt.Errorf("catalog seed: product without sku")
		}
		if sp.CreditsAmount <= 0 {
			return nil, fmt.Errorf("catalog seed: %s must have a positive credits_amount", sp.SKU)
		}
		scope := domain.RoleScope(sp.RoleScope)
		switch scope {
		case domain.RoleScopeEmployer, domain.RoleScopeCandidate, domain.RoleScopeBoth:
		default:
			return nil, fmt.Errorf("catalog seed: %s has invalid role_scope %q", sp.SKU, sp.RoleScope)
		}
		p := domain.Product{
			SKU:           sp.SKU,
			Name:          sp.Name,
			Description:   sp.Description,
			CreditsAmount: sp.CreditsAmount,
			RoleScope:     scope,
			Active:        sp.Active == nil || *sp.Active,
			SortOrder:     sp.SortOrder,
			Metadata:      sp.Metadata,
		}
		if sp.PriceKES != "" {
			price, err := decimal.NewFromString(sp.PriceKES)
			if err != nil {
				return nil, fmt.Errorf("catalog seed: %s has invalid price_kes: %w", sp.SKU, err)
			}
			p.PriceKES = decimal.NewNullDecimal(price)
		}
		products = append(products, p)
	}
	return products, nil
}
