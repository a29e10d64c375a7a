package models

import "github.com/shopspring/decimal"

type Receipt struct {
	OrderNumber    int64           `json:"order_number"`
	OrderDate      string          `json:"order_date"`
	RequiredDate   string          `json:"required_date"`
	DispatchDate   string          `json:"dispatch_date"`
	CustomerNumber int             `json:"customer_number"`
	BranchCode     int             `json:"branch_code"`
	OrderStatusID  int             `json:"order_status_id"`
	OverallTotal   decimal.Decimal `json:"overall_total"`
	Items          []ReceiptItem   `json:"items"`
}

type ReceiptItem struct {
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}
