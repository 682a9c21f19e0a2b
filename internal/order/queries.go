package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/events"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

type StatusUpdate struct {
	Status         models.OrderStatus
	TrackingNumber *string
	Notes          *string
}

// UpdateOrderStatus sets the order status on behalf of the owning vendor or
// an admin. Any status is accepted unless strict transitions are enabled.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, u StatusUpdate) (*models.Order, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAttempt(caller, policy.UpdateOrderStatus); err != nil {
		return nil, err
	}

	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	res, err := s.owners(ctx, s.db, order)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(caller, policy.UpdateOrderStatus, res); err != nil {
		return nil, err
	}

	if !u.Status.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid order status %q", u.Status))
	}
	if s.strict && !CanTransition(order.OrderStatus, u.Status) {
		return nil, apperr.BadRequest(fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, u.Status))
	}

	upd := store.OrderStatusUpdate{
		Status:         u.Status,
		TrackingNumber: u.TrackingNumber,
		Notes:          u.Notes,
	}
	if u.Status == models.OrderStatusDelivered && order.DeliveryDate == nil {
		now := s.now()
		upd.DeliveryDate = &now
	}

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		updated, err := store.UpdateOrderStatus(ctx, tx, orderID, upd)
		if err != nil {
			return err
		}
		return events.Enqueue(ctx, tx, s.topic, events.OrderStatusUpdated, updated.OrderNumber, newOrderEvent(updated))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusUpdated(string(u.Status))
	s.log.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(order.OrderStatus)),
		zap.String("to", string(u.Status)),
		zap.Int64("user_id", caller.UserID))
	return s.refresh(ctx, orderID)
}

// GetOrder returns the order aggregate to its customer, the owning vendor or
// an admin. Reads are served from the cache when one is configured.
func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAttempt(caller, policy.ViewOrder); err != nil {
		return nil, err
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.owners(ctx, s.db, order)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(caller, policy.ViewOrder, res); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.Order, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn("read cached order", zap.Int64("order_id", id), zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, id)
	if genErr != nil {
		s.log.Warn("read order cache generation", zap.Int64("order_id", id), zap.Error(genErr))
	}

	order, err := store.GetOrderDetail(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		if _, err := s.cache.SetIfCurrent(ctx, order, gen); err != nil {
			s.log.Warn("cache order", zap.Int64("order_id", id), zap.Error(err))
		}
	}
	return order, nil
}

// ListOrders lists every order. Admin only.
func (s *Service) ListOrders(ctx context.Context, f store.OrderFilter, p store.PageParams) (*store.OffsetPage[models.Order], error) {
	if _, err := policy.Authorize(ctx, s.db, policy.ListAllOrders, policy.Resource{}); err != nil {
		return nil, err
	}
	return store.ListOrders(ctx, s.db, f, p)
}

// ListMyOrders lists the calling customer's orders.
func (s *Service) ListMyOrders(ctx context.Context, f store.OrderFilter, p store.PageParams) (*store.OffsetPage[models.Order], error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ListOwnOrders, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if caller.CustomerID == 0 {
		return nil, database.ErrProfileNotFound
	}
	f.CustomerID = &caller.CustomerID
	f.VendorID = nil
	return store.ListOrders(ctx, s.db, f, p)
}

// ListMyShopOrders lists orders containing products of the calling vendor's
// shop.
func (s *Service) ListMyShopOrders(ctx context.Context, f store.OrderFilter, p store.PageParams) (*store.OffsetPage[models.Order], error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ListShopOrders, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if caller.VendorID == 0 {
		return nil, database.ErrProfileNotFound
	}
	f.VendorID = &caller.VendorID
	f.CustomerID = nil
	return store.ListOrders(ctx, s.db, f, p)
}
