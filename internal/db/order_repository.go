package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// GetByNumber returns a single order with its lines and payment, or nil
// if the order does not exist
func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber int64) (*models.Order, error) {
	orderQuery := `
		SELECT order_number, order_date, required_date, dispatch_date, order_status_id, customer_number, branch_code
		FROM customer_order
		WHERE order_number = $1
	`

	var order models.Order
	h := &order.Header
	err := r.db.QueryRowContext(ctx, orderQuery, orderNumber).
		Scan(&h.OrderNumber, &h.OrderDate, &h.RequiredDate, &h.DispatchDate, &h.OrderStatusID, &h.CustomerNumber, &h.BranchCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	linesQuery := `
		SELECT order_number, line_number, product_code, quantity_ordered, price_each
		FROM order_detail
		WHERE order_number = $1
		ORDER BY line_number
	`
	rows, err := r.db.QueryContext(ctx, linesQuery, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.OrderNumber, &l.LineNumber, &l.ProductCode, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order details: %w", err)
	}

	paymentQuery := `
		SELECT payment_id, order_number, payment_date, amount, payment_method_id
		FROM payment
		WHERE order_number = $1
	`
	var p models.Payment
	err = r.db.QueryRowContext(ctx, paymentQuery, orderNumber).
		Scan(&p.PaymentID, &p.OrderNumber, &p.PaymentDate, &p.Amount, &p.PaymentMethodID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get payment: %w", err)
	default:
		order.Payment = &p
	}

	return &order, nil
}
