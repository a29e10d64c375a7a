package db

import (
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// SampleProducts is the catalog loaded when SEED_PRODUCTS is set
func SampleProducts() []models.Product {
	return []models.Product{
		{ProductCode: "P001", ProductName: "Mukimo", SellingPrice: decimal.RequireFromString("150.00"), QuantityInStock: 40},
		{ProductCode: "P018", ProductName: "Chapati", SellingPrice: decimal.RequireFromString("30.00"), QuantityInStock: 3},
		{ProductCode: "P038", ProductName: "Githeri", SellingPrice: decimal.RequireFromString("120.00"), QuantityInStock: 25},
		{ProductCode: "P072", ProductName: "Mandazi", SellingPrice: decimal.RequireFromString("20.00"), QuantityInStock: 60},
	}
}
