package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alipaygw/internal/config"

	"github.com/redis/go-redis/v9"
)

// Guard states stored under each trade key.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	// Short, so a crashed writer does not block redelivery for long.
	InProgressExpiry = 10 * time.Second
	CompletedExpiry  = 24 * time.Hour

	keyPrefix = "alipay:txn:"
)

// client is the subset of *redis.Client the guard needs.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Guard keeps two concurrent deliveries of the same trade from being recorded
// at once. The transaction store remains the source of truth.
type Guard struct {
	client client
}

// NewGuard connects to Redis; it returns nil when no address is configured.
func NewGuard(cfg config.RedisCfg) *Guard {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Guard{client: rdb}
}

func key(transactionID string) string {
	return keyPrefix + transactionID
}

// Ping checks the connection.
func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Acquire marks the trade IN_PROGRESS. It reports false when the trade is
// already completed or another call holds it.
func (g *Guard) Acquire(ctx context.Context, transactionID string) (bool, error) {
	k := key(transactionID)

	status, err := g.client.Get(ctx, k).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("redis GET error: %w", err)
	}
	if status == StatusCompleted {
		return false, nil
	}

	set, err := g.client.SetNX(ctx, k, StatusInProgress, InProgressExpiry).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX error: %w", err)
	}
	return set, nil
}

// Complete marks the trade COMPLETED with a long expiry.
func (g *Guard) Complete(ctx context.Context, transactionID string) error {
	return g.client.Set(ctx, key(transactionID), StatusCompleted, CompletedExpiry).Err()
}

// Release drops the IN_PROGRESS mark after a failed write so a redelivery can retry.
func (g *Guard) Release(ctx context.Context, transactionID string) error {
	return g.client.Del(ctx, key(transactionID)).Err()
}
