package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/models"
)

// order:{id}     -> JSON of the order with items, payment and cancellation request
// order:{id}:gen -> counter bumped by every invalidation
const (
	keyOrder    = "order:%d"
	keyOrderGen = "order:%d:gen"
)

const (
	defaultOrderTTL = 5 * time.Minute
	genTTL          = 24 * time.Hour
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Orders caches order aggregates. A nil *Orders is a valid cache that never
// hits.
type Orders struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOrders(rdb *redis.Client, ttl time.Duration) *Orders {
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	return &Orders{rdb: rdb, ttl: ttl}
}

func (c *Orders) Get(ctx context.Context, id int64) (*models.Order, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	data, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrder, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached order: %w", err)
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, false, fmt.Errorf("decode cached order: %w", err)
	}
	return &order, true, nil
}

// Generation returns the invalidation counter of the order. Read it before
// loading the order from the database and hand it to SetIfCurrent.
func (c *Orders) Generation(ctx context.Context, id int64) (int64, error) {
	if c == nil {
		return 0, nil
	}

	gen, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderGen, id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get order generation: %w", err)
	}
	return gen, nil
}

// SetIfCurrent caches the order unless it was invalidated after gen was
// read, so a load that raced with a write never puts the old aggregate back.
// It reports whether the order was stored.
func (c *Orders) SetIfCurrent(ctx context.Context, order *models.Order, gen int64) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := json.Marshal(order)
	if err != nil {
		return false, fmt.Errorf("encode order: %w", err)
	}

	genKey := fmt.Sprintf(keyOrderGen, order.ID)
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fmt.Sprintf(keyOrder, order.ID), data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache order: %w", err)
	}
	return stored, nil
}

// Invalidate bumps the order's generation and drops the cached aggregate.
// Call it after the write has committed.
func (c *Orders) Invalidate(ctx context.Context, id int64) error {
	if c == nil {
		return nil
	}

	genKey := fmt.Sprintf(keyOrderGen, id)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, genTTL)
		pipe.Del(ctx, fmt.Sprintf(keyOrder, id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached order: %w", err)
	}
	return nil
}
