package models

import "github.com/shopspring/decimal"

// ProductSnapshot is a point-in-time read of one product row. Values read
// under a row lock are only valid until the enclosing transaction ends.
type ProductSnapshot struct {
	ProductCode     string          `json:"product_code"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

// Product is a catalog row as stored in the product table.
type Product struct {
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductCode:     p.ProductCode,
		SellingPrice:    p.SellingPrice,
		QuantityInStock: p.QuantityInStock,
	}
}
