package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// ErrMalformedEvent marks a message that will never be processable.
var ErrMalformedEvent = errors.New("malformed order.created event")

type ReceiptStore interface {
	SetReceipt(ctx context.Context, receipt *models.Receipt) error
}

// ReceiptConsumer copies receipts carried by order.created events into the
// receipt cache.
type ReceiptConsumer struct {
	cache  ReceiptStore
	logger *zap.Logger
}

func NewReceiptConsumer(cache ReceiptStore, logger *zap.Logger) *ReceiptConsumer {
	return &ReceiptConsumer{cache: cache, logger: logger}
}

// ProcessOrderCreated handles deliveries until ctx is done or the channel closes
func (c *ReceiptConsumer) ProcessOrderCreated(ctx context.Context, messages <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				c.logger.Warn("⚠️ Delivery channel closed")
				return
			}
			c.dispatch(ctx, msg)
		}
	}
}

func (c *ReceiptConsumer) dispatch(ctx context.Context, msg amqp.Delivery) {
	err := c.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, ErrMalformedEvent):
		c.logger.Error("❌ Dropping event", zap.String("message_id", msg.MessageId), zap.Error(err))
		msg.Nack(false, false) // dead-lettered, never requeued
	default:
		c.logger.Warn("⚠️ Event failed, requeued", zap.String("message_id", msg.MessageId), zap.Error(err))
		msg.Nack(false, true)
	}
}

// Handle caches the receipt of one order.created payload
func (c *ReceiptConsumer) Handle(ctx context.Context, body []byte) error {
	var event models.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if event.OrderNumber <= 0 || event.Receipt == nil {
		return fmt.Errorf("%w: missing order number or receipt", ErrMalformedEvent)
	}
	if event.Receipt.OrderNumber != event.OrderNumber {
		return fmt.Errorf("%w: receipt for order %d attached to order %d", ErrMalformedEvent, event.Receipt.OrderNumber, event.OrderNumber)
	}

	c.logger.Info("📥 Received order.created event", zap.Int64("order_number", event.OrderNumber), zap.String("event_id", event.EventID))

	if err := c.cache.SetReceipt(ctx, event.Receipt); err != nil {
		return fmt.Errorf("failed to cache receipt: %w", err)
	}

	c.logger.Info("✅ Receipt cached", zap.Int64("order_number", event.OrderNumber))
	return nil
}
