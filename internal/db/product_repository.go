package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// GetByCode returns a single product, or nil if it does not exist
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	query := `SELECT product_code, product_name, selling_price, quantity_in_stock FROM product WHERE product_code = $1`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, code).
		Scan(&p.ProductCode, &p.ProductName, &p.SellingPrice, &p.QuantityInStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

// Upsert inserts products or overwrites price and stock of existing ones
func (r *ProductRepository) Upsert(ctx context.Context, products ...models.Product) error {
	query := `
		INSERT INTO product (product_code, product_name, selling_price, quantity_in_stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_code) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			selling_price = EXCLUDED.selling_price,
			quantity_in_stock = EXCLUDED.quantity_in_stock
	`

	for _, p := range products {
		if _, err := r.db.ExecContext(ctx, query, p.ProductCode, p.ProductName, p.SellingPrice, p.QuantityInStock); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.ProductCode, err)
		}
	}

	return nil
}
