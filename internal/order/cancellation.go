package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/events"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

const (
	defaultApprovalResponse = "Cancellation request approved"
	refundReason            = "Order cancellation approved"
)

var notCancellable = map[models.OrderStatus]bool{
	models.OrderStatusDelivered: true,
	models.OrderStatusCancelled: true,
	models.OrderStatusReturned:  true,
	models.OrderStatusRefunded:  true,
}

// RequestCancellation files the customer's cancellation request. The order
// itself is unchanged until a vendor or admin decides.
func (s *Service) RequestCancellation(ctx context.Context, orderID int64, reason string, details *string) (*models.Order, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAttempt(caller, policy.RequestCancellation); err != nil {
		return nil, err
	}

	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(caller, policy.RequestCancellation, policy.Resource{CustomerID: order.CustomerID}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.BadRequest("reason is required")
	}
	if notCancellable[order.OrderStatus] {
		return nil, apperr.BadRequest(fmt.Sprintf("Order cannot be cancelled in %s status", order.OrderStatus))
	}

	_, err = store.GetCancellationByOrder(ctx, s.db, orderID)
	switch {
	case err == nil:
		return nil, store.ErrCancellationExists
	case !errors.Is(err, database.ErrCancellationNotFound):
		return nil, err
	}

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		if _, err := store.InsertCancellation(ctx, tx, &models.CancellationRequest{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Reason:     reason,
			Details:    details,
		}); err != nil {
			return err
		}

		ev := newOrderEvent(order)
		ev.Reason = reason
		return events.Enqueue(ctx, tx, s.topic, events.OrderCancellationRequested, order.OrderNumber, ev)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cancellation requested", zap.Int64("order_id", orderID), zap.Int64("customer_id", caller.CustomerID))
	return s.refresh(ctx, orderID)
}

// ApproveCancellation cancels the order, refunds a paid payment and puts the
// stock of every item back, all in the transaction that closes the request.
// An order that reached DELIVERED or a later status after the request was
// filed is refused and the request stays PENDING.
func (s *Service) ApproveCancellation(ctx context.Context, cancellationID int64, response *string) (*models.Order, error) {
	req, order, err := s.decisionTarget(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if notCancellable[order.OrderStatus] {
		return nil, apperr.BadRequest(fmt.Sprintf("Order cannot be cancelled in %s status", order.OrderStatus))
	}

	msg := defaultApprovalResponse
	if response != nil && strings.TrimSpace(*response) != "" {
		msg = *response
	}

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		now := s.now()
		if _, err := store.DecideCancellation(ctx, tx, req.ID, models.CancellationApproved, msg, now); err != nil {
			return err
		}
		if err := store.MarkOrderCancelled(ctx, tx, order.ID, req.Reason); err != nil {
			return err
		}

		refunded, ok, err := store.RefundIfPaid(ctx, tx, order.ID, store.Refund{
			Reason:        refundReason,
			TransactionID: "RFD-" + s.newRef(),
			At:            now,
		})
		if err != nil {
			return err
		}
		if ok {
			if err := store.SetOrderPaymentStatus(ctx, tx, order.ID, models.PaymentStatusRefunded); err != nil {
				return err
			}
			s.log.Info("payment refunded", zap.Int64("order_id", order.ID), zap.String("amount", refunded.StringFixed(2)))
		}

		items, err := store.ListOrderItems(ctx, tx, []int64{order.ID})
		if err != nil {
			return err
		}
		for _, item := range items[order.ID] {
			if err := store.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		ev := newOrderEvent(order)
		ev.OrderStatus = models.OrderStatusCancelled
		if ok {
			ev.PaymentStatus = models.PaymentStatusRefunded
		}
		ev.Reason = req.Reason
		return events.Enqueue(ctx, tx, s.topic, events.OrderCancelled, order.OrderNumber, ev)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Cancellation(string(models.CancellationApproved))
	s.log.Info("cancellation approved", zap.Int64("order_id", order.ID), zap.Int64("cancellation_id", req.ID))
	return s.refresh(ctx, order.ID)
}

// RejectCancellation closes the request without touching the order.
func (s *Service) RejectCancellation(ctx context.Context, cancellationID int64, response string) (*models.Order, error) {
	req, order, err := s.decisionTarget(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(response) == "" {
		return nil, apperr.BadRequest("You must provide a reason for rejecting the request")
	}

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		if _, err := store.DecideCancellation(ctx, tx, req.ID, models.CancellationRejected, response, s.now()); err != nil {
			return err
		}
		ev := newOrderEvent(order)
		ev.Reason = response
		return events.Enqueue(ctx, tx, s.topic, events.OrderCancellationRejected, order.OrderNumber, ev)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Cancellation(string(models.CancellationRejected))
	s.log.Info("cancellation rejected", zap.Int64("order_id", order.ID), zap.Int64("cancellation_id", req.ID))
	return s.refresh(ctx, order.ID)
}

// decisionTarget loads a request and its order and checks that the caller
// may decide it. An already decided request is reported before any write.
func (s *Service) decisionTarget(ctx context.Context, cancellationID int64) (*models.CancellationRequest, *models.Order, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanAttempt(caller, policy.DecideCancellation); err != nil {
		return nil, nil, err
	}

	req, err := store.GetCancellation(ctx, s.db, cancellationID)
	if err != nil {
		return nil, nil, err
	}
	order, err := store.GetOrder(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.owners(ctx, s.db, order)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanPerform(caller, policy.DecideCancellation, res); err != nil {
		return nil, nil, err
	}

	if req.Status != models.CancellationPending {
		return nil, nil, database.ErrAlreadyProcessed
	}
	return req, order, nil
}
