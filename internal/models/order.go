package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderHeader struct {
	OrderNumber    int64     `json:"order_number"`
	OrderDate      time.Time `json:"order_date"`
	RequiredDate   time.Time `json:"required_date"`
	DispatchDate   time.Time `json:"dispatch_date"`
	OrderStatusID  int       `json:"order_status_id"`
	CustomerNumber int       `json:"customer_number"`
	BranchCode     int       `json:"branch_code"`
}

// OrderLine carries the unit price captured when the line was accepted.
type OrderLine struct {
	OrderNumber int64           `json:"order_number"`
	LineNumber  int             `json:"line_number"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Payment struct {
	PaymentID       int64           `json:"payment_id"`
	OrderNumber     int64           `json:"order_number"`
	PaymentDate     time.Time       `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID int             `json:"payment_method_id"`
}

// Order groups everything written for one fulfilled order.
type Order struct {
	Header  OrderHeader `json:"header"`
	Lines   []OrderLine `json:"lines"`
	Payment *Payment    `json:"payment,omitempty"`
}

// RequestedLine is one raw item from a fulfillment request. Codes may
// repeat and quantities may be missing or non-positive.
type RequestedLine struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity_ordered"`
}

type FulfillmentRequest struct {
	CustomerNumber  int             `json:"customer_number"`
	BranchCode      int             `json:"branch_code"`
	OrderStatusID   int             `json:"order_status_id"`
	PaymentMethodID int             `json:"payment_method_id"`
	Items           []RequestedLine `json:"items"`
}

// InvalidLine is a requested line dropped before aggregation. Index is
// the line's position in the request.
type InvalidLine struct {
	Index       int    `json:"index"`
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity_ordered"`
	Reason      string `json:"reason"`
}

type FulfillmentResult struct {
	Accepted     map[string]int    `json:"accepted"`
	Rejected     map[string]string `json:"rejected"`
	InvalidItems []InvalidLine     `json:"invalid_items,omitempty"`
	OrderNumber  *int64            `json:"order_number,omitempty"`
	Receipt      *Receipt          `json:"receipt,omitempty"`
	Message      string            `json:"message"`
}
