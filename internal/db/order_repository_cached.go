package db

import (
	"context"

	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// OrderSource reads committed orders. Both OrderRepository and the
// in-memory store satisfy it.
type OrderSource interface {
	GetByNumber(ctx context.Context, orderNumber int64) (*models.Order, error)
}

// ReceiptCache returns nil, nil on a miss.
type ReceiptCache interface {
	GetReceipt(ctx context.Context, orderNumber int64) (*models.Receipt, error)
	SetReceipt(ctx context.Context, receipt *models.Receipt) error
}

// CachedOrderRepository serves receipts from the cache and falls back to
// rebuilding them from stored order lines. A nil cache disables caching.
type CachedOrderRepository struct {
	repo   OrderSource
	cache  ReceiptCache
	logger *zap.Logger
}

func NewCachedOrderRepository(repo OrderSource, cache ReceiptCache, logger *zap.Logger) *CachedOrderRepository {
	return &CachedOrderRepository{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (r *CachedOrderRepository) GetByNumber(ctx context.Context, orderNumber int64) (*models.Order, error) {
	return r.repo.GetByNumber(ctx, orderNumber)
}

// GetReceipt returns the receipt of an order, or nil if the order does not exist
func (r *CachedOrderRepository) GetReceipt(ctx context.Context, orderNumber int64) (*models.Receipt, error) {
	if r.cache != nil {
		cached, err := r.cache.GetReceipt(ctx, orderNumber)
		switch {
		case err != nil:
			r.logger.Warn("⚠️ Cache error", zap.Int64("order_number", orderNumber), zap.Error(err))
		case cached != nil:
			r.logger.Debug("📦 Cache HIT", zap.Int64("order_number", orderNumber))
			return cached, nil
		}
	}

	r.logger.Debug("💾 Cache MISS - fetching from store", zap.Int64("order_number", orderNumber))
	order, err := r.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	receipt := fulfillment.BuildReceipt(order)

	if r.cache != nil {
		if err := r.cache.SetReceipt(ctx, &receipt); err != nil {
			r.logger.Warn("⚠️ Failed to cache receipt", zap.Int64("order_number", orderNumber), zap.Error(err))
		}
	}

	return &receipt, nil
}
