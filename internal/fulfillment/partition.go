package fulfillment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

type Decision struct {
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
	Accepted    bool
	Reason      string
}

// Partition holds exactly one decision per demanded product, both slices
// sorted by product code.
type Partition struct {
	Accepted []Decision
	Rejected []Decision
}

func (p Partition) AcceptedQuantities() map[string]int {
	out := make(map[string]int, len(p.Accepted))
	for _, d := range p.Accepted {
		out[d.ProductCode] = d.Quantity
	}
	return out
}

func (p Partition) RejectedReasons() map[string]string {
	out := make(map[string]string, len(p.Rejected))
	for _, d := range p.Rejected {
		out[d.ProductCode] = d.Reason
	}
	return out
}

// Reserve locks every demanded row inside tx and decides each product
// against the locked stock. It performs no writes.
func Reserve(ctx context.Context, tx InventoryTx, demand Demand) (Partition, error) {
	snapshots, err := tx.LockAndFetch(ctx, demand.Codes())
	if err != nil {
		return Partition{}, fmt.Errorf("failed to lock inventory: %w", err)
	}
	return Decide(demand, snapshots), nil
}

// Decide partitions demand against snapshots. A product is accepted at its
// full aggregated quantity or rejected; quantities are never split.
func Decide(demand Demand, snapshots map[string]models.ProductSnapshot) Partition {
	var p Partition

	for _, code := range demand.Codes() {
		requested := demand.Quantities[code]

		snap, ok := snapshots[code]
		switch {
		case !ok:
			p.Rejected = append(p.Rejected, Decision{
				ProductCode: code,
				Quantity:    requested,
				Reason:      ReasonProductNotFound,
			})
		case requested <= 0:
			p.Rejected = append(p.Rejected, Decision{
				ProductCode: code,
				Quantity:    requested,
				Reason:      ReasonInvalidInput,
			})
		case requested > snap.QuantityInStock:
			p.Rejected = append(p.Rejected, Decision{
				ProductCode: code,
				Quantity:    requested,
				Reason:      insufficientStock(requested, snap.QuantityInStock),
			})
		default:
			p.Accepted = append(p.Accepted, Decision{
				ProductCode: code,
				Quantity:    requested,
				UnitPrice:   snap.SellingPrice,
				Accepted:    true,
			})
		}
	}

	return p
}

func insufficientStock(requested, available int) string {
	return fmt.Sprintf("Insufficient stock (requested %d, available %d)", requested, available)
}
