package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

const (
	requiredAfter = 30 * time.Minute
	dispatchAfter = 20 * time.Minute

	// minor units of the single supported currency
	currencyPlaces = 2
)

// OrderParams are the caller-supplied header and payment attributes.
type OrderParams struct {
	CustomerNumber  int
	BranchCode      int
	OrderStatusID   int
	PaymentMethodID int
}

// Sequencer writes an accepted partition as one order. It is the only
// component that mutates stock.
type Sequencer struct {
	now func() time.Time
}

func NewSequencer(now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{now: now}
}

// Commit creates the header, one line and one stock decrement per accepted
// decision, and a single payment, then commits tx. On error the caller must
// roll tx back; nothing has been made durable.
func (s *Sequencer) Commit(ctx context.Context, tx Tx, accepted []Decision, p OrderParams) (*models.Order, error) {
	if len(accepted) == 0 {
		return nil, errors.New("no accepted lines to commit")
	}

	orderDate := s.now()
	header := models.OrderHeader{
		OrderDate:      orderDate,
		RequiredDate:   orderDate.Add(requiredAfter),
		DispatchDate:   orderDate.Add(dispatchAfter),
		OrderStatusID:  p.OrderStatusID,
		CustomerNumber: p.CustomerNumber,
		BranchCode:     p.BranchCode,
	}

	orderNumber, err := tx.CreateOrderHeader(ctx, &header)
	if err != nil {
		return nil, fmt.Errorf("failed to create order header: %w", err)
	}
	header.OrderNumber = orderNumber

	order := &models.Order{Header: header}
	total := decimal.Zero

	for i, d := range accepted {
		line := models.OrderLine{
			OrderNumber: orderNumber,
			LineNumber:  i + 1,
			ProductCode: d.ProductCode,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
		}
		if err := tx.CreateOrderLine(ctx, line); err != nil {
			return nil, fmt.Errorf("failed to create order line %s: %w", d.ProductCode, err)
		}
		if err := tx.DecrementStock(ctx, d.ProductCode, d.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement stock %s: %w", d.ProductCode, err)
		}

		total = total.Add(line.LineTotal())
		order.Lines = append(order.Lines, line)
	}

	payment := models.Payment{
		OrderNumber:     orderNumber,
		PaymentDate:     s.now(),
		Amount:          total.Round(currencyPlaces),
		PaymentMethodID: p.PaymentMethodID,
	}
	paymentID, err := tx.CreatePayment(ctx, &payment)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	payment.PaymentID = paymentID
	order.Payment = &payment

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}
