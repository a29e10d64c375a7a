package fulfillment

import (
	"context"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// Store opens the transaction a single fulfillment runs in.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// InventoryTx is the inventory side of an open transaction.
type InventoryTx interface {
	// LockAndFetch returns the rows for codes that exist, locking each of
	// them until the transaction ends. Codes are locked in ascending order.
	LockAndFetch(ctx context.Context, codes []string) (map[string]models.ProductSnapshot, error)

	// DecrementStock reduces a row previously locked by LockAndFetch.
	DecrementStock(ctx context.Context, productCode string, amount int) error
}

// OrderTx is the order persistence side of an open transaction.
type OrderTx interface {
	CreateOrderHeader(ctx context.Context, header *models.OrderHeader) (int64, error)
	CreateOrderLine(ctx context.Context, line models.OrderLine) error
	CreatePayment(ctx context.Context, payment *models.Payment) (int64, error)
}

// Tx is one atomic unit of work. Rollback after Commit is a no-op.
type Tx interface {
	InventoryTx
	OrderTx
	Commit() error
	Rollback() error
}

// EventPublisher announces committed orders.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order, receipt *models.Receipt) error
}
