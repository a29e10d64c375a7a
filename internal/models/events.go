package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is published after a fulfillment commits
type OrderCreatedEvent struct {
	EventID        string           `json:"event_id"`
	OrderNumber    int64            `json:"order_number"`
	CustomerNumber int              `json:"customer_number"`
	BranchCode     int              `json:"branch_code"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Items          []OrderItemEvent `json:"items"`
	Receipt        *Receipt         `json:"receipt,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type OrderItemEvent struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
}
