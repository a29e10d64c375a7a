package fulfillment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

type Service struct {
	store     Store
	sequencer *Sequencer
	publisher EventPublisher
	logger    *zap.Logger
}

type Option func(*Service)

// WithClock overrides the time source used for order and payment dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.sequencer = NewSequencer(now)
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		sequencer: NewSequencer(nil),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FulfillOrder aggregates the requested lines, locks and decides them
// against current stock, and commits the accepted ones as a single order.
// A returned error always wraps ErrFulfillmentFailed and means nothing was
// persisted.
func (s *Service) FulfillOrder(ctx context.Context, req models.FulfillmentRequest) (*models.FulfillmentResult, error) {
	demand := Aggregate(req.Items)

	result := &models.FulfillmentResult{
		Accepted:     map[string]int{},
		Rejected:     map[string]string{},
		InvalidItems: demand.Invalid,
	}

	if demand.Empty() {
		result.Message = MessageNoValidItems
		return result, nil
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", ErrFulfillmentFailed, err)
	}
	defer tx.Rollback()

	partition, err := Reserve(ctx, tx, demand)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFulfillmentFailed, err)
	}
	result.Rejected = partition.RejectedReasons()

	if len(partition.Accepted) == 0 {
		if err := tx.Rollback(); err != nil {
			s.logger.Warn("⚠️ Failed to release inventory locks", zap.Error(err))
		}
		s.logger.Info("🚫 No items could be fulfilled",
			zap.Int("customer_number", req.CustomerNumber),
			zap.Int("rejected", len(partition.Rejected)),
		)
		result.Message = MessageNoneFulfilled
		return result, nil
	}

	order, err := s.sequencer.Commit(ctx, tx, partition.Accepted, OrderParams{
		CustomerNumber:  req.CustomerNumber,
		BranchCode:      req.BranchCode,
		OrderStatusID:   req.OrderStatusID,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFulfillmentFailed, err)
	}

	receipt := BuildReceipt(order)
	orderNumber := order.Header.OrderNumber

	result.Accepted = partition.AcceptedQuantities()
	result.OrderNumber = &orderNumber
	result.Receipt = &receipt
	result.Message = MessageOrderCreated

	s.logger.Info("✅ Order created",
		zap.Int64("order_number", orderNumber),
		zap.Int("accepted", len(partition.Accepted)),
		zap.Int("rejected", len(partition.Rejected)),
		zap.String("total", receipt.OverallTotal.StringFixed(currencyPlaces)),
	)

	if s.publisher != nil {
		// the order is already committed; a lost event is only logged
		if err := s.publisher.PublishOrderCreated(ctx, order, &receipt); err != nil {
			s.logger.Warn("⚠️ Failed to publish event", zap.Int64("order_number", orderNumber), zap.Error(err))
		} else {
			s.logger.Info("📤 Published order.created event", zap.Int64("order_number", orderNumber))
		}
	}

	return result, nil
}
