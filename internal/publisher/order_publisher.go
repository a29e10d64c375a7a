package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

const OrderCreatedQueue = "order.created"

// Broker is the slice of messaging.RabbitMQ the publisher needs.
type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, messageID string, message []byte) error
}

type OrderPublisher struct {
	mq  Broker
	now func() time.Time
}

func NewOrderPublisher(mq Broker) (*OrderPublisher, error) {
	if err := mq.DeclareQueue(OrderCreatedQueue); err != nil {
		return nil, err
	}

	return &OrderPublisher{mq: mq, now: time.Now}, nil
}

// PublishOrderCreated publishes an order.created event
func (p *OrderPublisher) PublishOrderCreated(ctx context.Context, order *models.Order, receipt *models.Receipt) error {
	event := NewOrderCreatedEvent(order, receipt, p.now())

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(ctx, OrderCreatedQueue, event.EventID, data)
}

func NewOrderCreatedEvent(order *models.Order, receipt *models.Receipt, at time.Time) models.OrderCreatedEvent {
	event := models.OrderCreatedEvent{
		EventID:        uuid.NewString(),
		OrderNumber:    order.Header.OrderNumber,
		CustomerNumber: order.Header.CustomerNumber,
		BranchCode:     order.Header.BranchCode,
		Receipt:        receipt,
		OccurredAt:     at.UTC(),
	}
	if order.Payment != nil {
		event.TotalAmount = order.Payment.Amount
	}

	for _, line := range order.Lines {
		event.Items = append(event.Items, models.OrderItemEvent{
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
		})
	}

	return event
}
