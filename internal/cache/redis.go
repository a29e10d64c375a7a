package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

// RedisCache stores receipts as JSON under receipt:<order number>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("✅ Connected to Redis", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return NewRedisCacheWithClient(client, ttl), nil
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func ReceiptKey(orderNumber int64) string {
	return fmt.Sprintf("receipt:%d", orderNumber)
}

// GetReceipt returns the cached receipt of an order, or nil on a miss.
func (c *RedisCache) GetReceipt(ctx context.Context, orderNumber int64) (*models.Receipt, error) {
	raw, err := c.client.Get(ctx, ReceiptKey(orderNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var receipt models.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt %d: %w", orderNumber, err)
	}
	return &receipt, nil
}

// SetReceipt caches receipt for the configured TTL
func (c *RedisCache) SetReceipt(ctx context.Context, receipt *models.Receipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to encode receipt %d: %w", receipt.OrderNumber, err)
	}
	return c.client.Set(ctx, ReceiptKey(receipt.OrderNumber), data, c.ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
