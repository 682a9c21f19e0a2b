// Package order runs the order lifecycle: placing orders, the cancellation
// workflow and vendor status updates. Every multi-step mutation commits as
// one transaction together with its outbox event.
package order

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safar/marketplace/internal/cache"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/events"
	"github.com/safar/marketplace/internal/metrics"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	db      *sql.DB
	log     *zap.Logger
	cache   *cache.Orders
	metrics *metrics.Domain
	txOpts  database.TxOptions
	strict  bool
	topic   string
	now     func() time.Time
	newRef  func() string
}

type Option func(*Service)

func WithCache(c *cache.Orders) Option { return func(s *Service) { s.cache = c } }

func WithMetrics(m *metrics.Domain) Option { return func(s *Service) { s.metrics = m } }

func WithTxOptions(opts database.TxOptions) Option { return func(s *Service) { s.txOpts = opts } }

// WithStrictTransitions makes UpdateOrderStatus enforce CanTransition.
func WithStrictTransitions(strict bool) Option { return func(s *Service) { s.strict = strict } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithTopic(topic string) Option { return func(s *Service) { s.topic = topic } }

// WithRefGenerator replaces the source of the random part of order numbers
// and transaction ids.
func WithRefGenerator(fn func() string) Option { return func(s *Service) { s.newRef = fn } }

func NewService(db *sql.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		log:    log.Named("order"),
		txOpts: database.DefaultTxOptions(),
		topic:  events.DefaultTopic,
		now:    time.Now,
		newRef: shortRef,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// shortRef is the first block of a random UUID, upper-cased.
func shortRef() string {
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// owners resolves the customer and vendor that own an order.
func (s *Service) owners(ctx context.Context, q database.Querier, o *models.Order) (policy.Resource, error) {
	vendorID, err := store.OrderVendorID(ctx, q, o.ID)
	if err != nil {
		return policy.Resource{}, err
	}
	return policy.Resource{CustomerID: o.CustomerID, VendorID: vendorID}, nil
}

// refresh drops the cached aggregate and reloads it from the database.
func (s *Service) refresh(ctx context.Context, id int64) (*models.Order, error) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("invalidate cached order", zap.Int64("order_id", id), zap.Error(err))
	}
	return store.GetOrderDetail(ctx, s.db, id)
}

type orderEvent struct {
	OrderID       int64                `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	CustomerID    int64                `json:"customerId"`
	OrderStatus   models.OrderStatus   `json:"orderStatus"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	TotalAmount   string               `json:"totalAmount"`
	Reason        string               `json:"reason,omitempty"`
}

func newOrderEvent(o *models.Order) orderEvent {
	return orderEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount.StringFixed(2),
	}
}
