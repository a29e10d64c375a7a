package db

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS product (
		product_code      VARCHAR(16) PRIMARY KEY,
		product_name      VARCHAR(100) NOT NULL DEFAULT '',
		selling_price     NUMERIC(10, 2) NOT NULL,
		quantity_in_stock INTEGER NOT NULL CHECK (quantity_in_stock >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS customer_order (
		order_number    SERIAL PRIMARY KEY,
		order_date      TIMESTAMP WITH TIME ZONE NOT NULL,
		required_date   TIMESTAMP WITH TIME ZONE NOT NULL,
		dispatch_date   TIMESTAMP WITH TIME ZONE NOT NULL,
		order_status_id INTEGER NOT NULL,
		customer_number INTEGER NOT NULL,
		branch_code     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_order_customer ON customer_order(customer_number)`,

	`CREATE TABLE IF NOT EXISTS order_detail (
		order_number     INTEGER NOT NULL REFERENCES customer_order(order_number),
		line_number      INTEGER NOT NULL,
		product_code     VARCHAR(16) NOT NULL REFERENCES product(product_code),
		quantity_ordered INTEGER NOT NULL CHECK (quantity_ordered > 0),
		price_each       NUMERIC(10, 2) NOT NULL,
		PRIMARY KEY (order_number, product_code)
	)`,

	`CREATE TABLE IF NOT EXISTS payment (
		payment_id        SERIAL PRIMARY KEY,
		order_number      INTEGER NOT NULL UNIQUE REFERENCES customer_order(order_number),
		payment_date      TIMESTAMP WITH TIME ZONE NOT NULL,
		amount            NUMERIC(12, 2) NOT NULL,
		payment_method_id INTEGER NOT NULL
	)`,
}

// Migrate creates the tables used by the fulfillment store.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, migration := range migrations {
		if _, err := db.Conn.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
