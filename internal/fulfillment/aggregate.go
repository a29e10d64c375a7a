package fulfillment

import (
	"math"
	"sort"
	"strings"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// Demand is the net requested quantity per distinct product.
type Demand struct {
	Quantities map[string]int
	Invalid    []models.InvalidLine
}

// Aggregate folds raw request lines into per-product demand. Lines with an
// empty code or a non-positive quantity are reported in Invalid, in input
// order, and contribute nothing. Totals saturate at math.MaxInt, which no
// stock level can cover.
func Aggregate(items []models.RequestedLine) Demand {
	d := Demand{Quantities: make(map[string]int)}

	for i, item := range items {
		code := strings.TrimSpace(item.ProductCode)
		if code == "" || item.Quantity <= 0 {
			d.Invalid = append(d.Invalid, models.InvalidLine{
				Index:       i,
				ProductCode: code,
				Quantity:    item.Quantity,
				Reason:      ReasonInvalidInput,
			})
			continue
		}
		d.Quantities[code] = addQuantity(d.Quantities[code], item.Quantity)
	}

	return d
}

func addQuantity(total, q int) int {
	if q > math.MaxInt-total {
		return math.MaxInt
	}
	return total + q
}

func (d Demand) Empty() bool {
	return len(d.Quantities) == 0
}

// Codes returns the demanded product codes in ascending order. This is
// also the row lock order.
func (d Demand) Codes() []string {
	codes := make([]string, 0, len(d.Quantities))
	for code := range d.Quantities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
