package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

const ReceiptTimeLayout = "2006-01-02 15:04:05"

// BuildReceipt projects an order already held in memory. Items keep the
// order in which the lines were created.
func BuildReceipt(order *models.Order) models.Receipt {
	h := order.Header
	r := models.Receipt{
		OrderNumber:    h.OrderNumber,
		OrderDate:      h.OrderDate.Format(ReceiptTimeLayout),
		RequiredDate:   h.RequiredDate.Format(ReceiptTimeLayout),
		DispatchDate:   h.DispatchDate.Format(ReceiptTimeLayout),
		CustomerNumber: h.CustomerNumber,
		BranchCode:     h.BranchCode,
		OrderStatusID:  h.OrderStatusID,
		Items:          make([]models.ReceiptItem, 0, len(order.Lines)),
	}

	total := decimal.Zero
	for _, line := range order.Lines {
		lineTotal := line.LineTotal()
		total = total.Add(lineTotal)
		r.Items = append(r.Items, models.ReceiptItem{
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
		})
	}
	r.OverallTotal = total.Round(currencyPlaces)

	return r
}
