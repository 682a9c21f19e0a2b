package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/safar/marketplace/internal/cache"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())}
}

func TestNilOrdersNeverHits(t *testing.T) {
	var c *cache.Orders
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	stored, err := c.SetIfCurrent(ctx, &models.Order{ID: 1}, gen)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, 1))
}

func TestOrdersRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	rdb := cache.NewClient(startRedis(t))
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	c := cache.NewOrders(rdb, time.Minute)

	_, ok, err := c.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache")

	order := &models.Order{
		ID:            42,
		OrderNumber:   "ORD-42",
		OrderStatus:   models.OrderStatusShipped,
		PaymentStatus: models.PaymentStatusPaid,
		TotalAmount:   decimal.RequireFromString("1960.00"),
		Items: []models.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("980.00")},
		},
	}
	gen, err := c.Generation(ctx, 42)
	require.NoError(t, err)
	stored, err := c.SetIfCurrent(ctx, order, gen)
	require.NoError(t, err)
	require.True(t, stored)

	got, ok, err := c.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ORD-42", got.OrderNumber)
	assert.Equal(t, models.OrderStatusShipped, got.OrderStatus)
	assert.True(t, order.TotalAmount.Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	ttl, err := rdb.TTL(ctx, "order:42").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, c.Invalidate(ctx, 42))
	_, ok, err = c.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaleLoadIsNotCached(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	rdb := cache.NewClient(startRedis(t))
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	c := cache.NewOrders(rdb, time.Minute)

	// A reader captures the generation and loads the PENDING row.
	gen, err := c.Generation(ctx, 7)
	require.NoError(t, err)
	stale := &models.Order{ID: 7, OrderStatus: models.OrderStatusPending}

	// A writer commits SHIPPED and invalidates before the reader stores.
	require.NoError(t, c.Invalidate(ctx, 7))

	stored, err := c.SetIfCurrent(ctx, stale, gen)
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	fresh := &models.Order{ID: 7, OrderStatus: models.OrderStatusShipped}
	stored, err = c.SetIfCurrent(ctx, fresh, next)
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusShipped, got.OrderStatus)
}
