package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

var ErrStockConflict = errors.New("stock decrement did not match a locked row with enough stock")

// FulfillmentStore runs fulfillments in READ COMMITTED transactions.
// Rows locked FOR UPDATE are re-read after a competing transaction
// commits, so a waiter always decides against committed stock.
type FulfillmentStore struct {
	db *sql.DB
}

func NewFulfillmentStore(database *PostgresDB) *FulfillmentStore {
	return &FulfillmentStore{db: database.Conn}
}

func (s *FulfillmentStore) BeginTx(ctx context.Context) (fulfillment.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) LockAndFetch(ctx context.Context, codes []string) (map[string]models.ProductSnapshot, error) {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	// ORDER BY sits below the row locks in the plan, so rows are locked
	// in product_code order.
	query := `
		SELECT product_code, selling_price, quantity_in_stock
		FROM product
		WHERE product_code = ANY($1)
		ORDER BY product_code
		FOR UPDATE
	`
	rows, err := t.tx.QueryContext(ctx, query, pq.Array(sorted))
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.ProductSnapshot, len(sorted))
	for rows.Next() {
		var p models.ProductSnapshot
		if err := rows.Scan(&p.ProductCode, &p.SellingPrice, &p.QuantityInStock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.ProductCode] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return out, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productCode string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %s by %d", fulfillment.ErrInvalidDecrement, productCode, amount)
	}

	query := `
		UPDATE product
		SET quantity_in_stock = quantity_in_stock - $2
		WHERE product_code = $1 AND $2 > 0 AND quantity_in_stock >= $2
	`
	result, err := t.tx.ExecContext(ctx, query, productCode, amount)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("%w: %s", ErrStockConflict, productCode)
	}

	return nil
}

func (t *pgTx) CreateOrderHeader(ctx context.Context, h *models.OrderHeader) (int64, error) {
	query := `
		INSERT INTO customer_order (order_date, required_date, dispatch_date, order_status_id, customer_number, branch_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_number
	`
	var orderNumber int64
	err := t.tx.QueryRowContext(ctx, query,
		h.OrderDate, h.RequiredDate, h.DispatchDate,
		h.OrderStatusID, h.CustomerNumber, h.BranchCode,
	).Scan(&orderNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	return orderNumber, nil
}

func (t *pgTx) CreateOrderLine(ctx context.Context, l models.OrderLine) error {
	query := `
		INSERT INTO order_detail (order_number, line_number, product_code, quantity_ordered, price_each)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, query, l.OrderNumber, l.LineNumber, l.ProductCode, l.Quantity, l.UnitPrice)
	if err != nil {
		return fmt.Errorf("failed to insert order detail: %w", err)
	}

	return nil
}

func (t *pgTx) CreatePayment(ctx context.Context, p *models.Payment) (int64, error) {
	query := `
		INSERT INTO payment (order_number, payment_date, amount, payment_method_id)
		VALUES ($1, $2, $3, $4)
		RETURNING payment_id
	`
	var paymentID int64
	err := t.tx.QueryRowContext(ctx, query, p.OrderNumber, p.PaymentDate, p.Amount, p.PaymentMethodID).Scan(&paymentID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payment: %w", err)
	}

	return paymentID, nil
}

func (t *pgTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
