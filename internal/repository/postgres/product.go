package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `sku, name, COALESCE(description, ''), credits_amount, price_kes, role_scope, is_active, sort_order, metadata, created_on`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var meta []byte
	if err := row.Scan(&p.SKU, &p.Name, &p.Description, &p.CreditsAmount, &p.PriceKES, &p.RoleScope,
		&p.Active, &p.SortOrder, &meta, &p.CreatedOn); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &p.Metadata); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *productRepository) ListActive(ctx context.Context, scopes []domain.RoleScope) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM credit_products WHERE is_active = TRUE`
	var args []any
	if len(scopes) > 0 {
		names := make([]string, len(scopes))
		for i, s := range scopes {
			names[i] = string(s)
		}
		query += ` AND role_scope = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY sort_order ASC, sku ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("catalog.list", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("catalog.list", err)
		}
		products = append(products, *p)
	}
	return products, storageErr("catalog.list", rows.Err())
}

func (r *productRepository) GetActiveBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM credit_products WHERE sku = $1 AND is_active = TRUE`, sku)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("catalog.get", err)
	}
	return p, nil
}
