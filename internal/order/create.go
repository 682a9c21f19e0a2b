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
	"github.com/safar/marketplace/internal/pricing"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int
	Color     *string
	Size      *string
}

type CreateOrderInput struct {
	Name            string
	Email           string
	ContactNumber   string
	ShippingAddress string
	District        string
	City            string
	ZipCode         string
	BillingAddress  *string
	ShippingMethod  models.ShippingMethod
	PaymentMethod   models.PaymentMethod
	Notes           *string
	DeliveryNotes   *string
	CouponCode      *string
	Items           []ItemInput
}

func (in CreateOrderInput) validate() error {
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"contactNumber", in.ContactNumber},
		{"shippingAddress", in.ShippingAddress},
		{"district", in.District},
		{"city", in.City},
		{"zipCode", in.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperr.BadRequest(fmt.Sprintf("%s is required", r.field))
		}
	}
	if !in.ShippingMethod.Valid() {
		return apperr.BadRequest("Invalid shipping method")
	}
	if !in.PaymentMethod.Valid() {
		return apperr.BadRequest("Invalid payment method")
	}
	if len(in.Items) == 0 {
		return apperr.BadRequest("Order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return apperr.BadRequest("Quantity must be at least 1")
		}
	}
	return nil
}

type line struct {
	product *models.Product
	item    models.OrderItem
}

// quote is the priced, validated order before anything is written.
type quote struct {
	lines    []line
	coupon   *models.Coupon
	discount decimal.Decimal
	totals   pricing.Totals
}

// CreateOrder validates every item and the coupon against the current
// catalog, then writes the order, its items, the stock decrements, the
// payment and the coupon usage in one transaction.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.CreateOrder, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if caller.CustomerID == 0 {
		return nil, database.ErrProfileNotFound
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	q, err := s.quote(ctx, in)
	if err != nil {
		return nil, err
	}

	ref := s.newRef()
	var orderID int64

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		order, err := store.InsertOrder(ctx, tx, q.order(in, caller.CustomerID, "ORD-"+ref))
		if err != nil {
			return err
		}

		for _, l := range q.lines {
			item := l.item
			item.OrderID = order.ID
			if _, err := store.InsertOrderItem(ctx, tx, &item); err != nil {
				return err
			}
			if err := store.DecrementStock(ctx, tx, l.product.ID, item.Quantity); err != nil {
				if errors.Is(err, database.ErrInsufficientStock) {
					return apperr.BadRequest(fmt.Sprintf("Insufficient stock for %s", l.product.Name))
				}
				return err
			}
		}

		txnID := "TXN-" + ref
		if _, err := store.InsertPayment(ctx, tx, &models.Payment{
			OrderID:       order.ID,
			PaymentMethod: in.PaymentMethod,
			TransactionID: &txnID,
			Amount:        order.TotalAmount,
			PaymentStatus: models.PaymentStatusUnpaid,
		}); err != nil {
			return err
		}

		if q.coupon != nil {
			if err := store.IncrementCouponUsage(ctx, tx, q.coupon.ID); err != nil {
				return err
			}
		}

		orderID = order.ID
		return events.Enqueue(ctx, tx, s.topic, events.OrderCreated, order.OrderNumber, newOrderEvent(order))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated()
	s.log.Info("order created",
		zap.Int64("order_id", orderID),
		zap.String("order_number", "ORD-"+ref),
		zap.Int64("customer_id", caller.CustomerID),
		zap.String("total", q.totals.TotalAmount.StringFixed(2)))

	return store.GetOrderDetail(ctx, s.db, orderID)
}

// quote runs the read-only checks. Stock is checked here for a readable
// error; the conditional decrement inside the transaction is what actually
// guards it.
func (s *Service) quote(ctx context.Context, in CreateOrderInput) (*quote, error) {
	q := &quote{}
	requested := make(map[int64]int, len(in.Items))
	products := make([]*models.Product, 0, len(in.Items))
	subtotal := decimal.Zero

	for _, it := range in.Items {
		product, err := store.GetProduct(ctx, s.db, it.ProductID)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				return nil, apperr.NotFound(fmt.Sprintf("Product with ID %d not found", it.ProductID))
			}
			return nil, err
		}
		if product.Status != models.ProductStatusActive {
			return nil, apperr.BadRequest(fmt.Sprintf("Product %s is not available", product.Name))
		}

		requested[product.ID] += it.Quantity
		if requested[product.ID] > product.StockQuantity {
			return nil, apperr.BadRequest(fmt.Sprintf("Insufficient stock for %s. Available: %d",
				product.Name, product.StockQuantity))
		}

		if it.VariantID != nil {
			if err := s.checkVariant(ctx, product, it); err != nil {
				return nil, err
			}
		}

		priced := pricing.LineTotal(product.Price, product.DiscountPercent, it.Quantity)
		subtotal = subtotal.Add(priced.Subtotal)
		products = append(products, product)
		q.lines = append(q.lines, line{
			product: product,
			item: models.OrderItem{
				ProductID: product.ID,
				VariantID: it.VariantID,
				Quantity:  it.Quantity,
				UnitPrice: priced.UnitPrice,
				Color:     it.Color,
				Size:      it.Size,
				Discount:  priced.Discount,
				Subtotal:  priced.Subtotal,
			},
		})
	}

	q.discount = decimal.Zero
	if in.CouponCode != nil && strings.TrimSpace(*in.CouponCode) != "" {
		coupon, err := store.GetCouponByCode(ctx, s.db, strings.TrimSpace(*in.CouponCode))
		if err != nil {
			if errors.Is(err, database.ErrCouponNotFound) {
				return nil, apperr.BadRequest("Invalid coupon code")
			}
			return nil, err
		}
		if err := pricing.ValidateCoupon(coupon, subtotal, s.now()); err != nil {
			return nil, err
		}
		q.coupon = coupon
		q.discount = pricing.CouponDiscount(coupon, subtotal)
	}

	shipping := pricing.ShippingCharge(in.ShippingMethod, products)
	q.totals = pricing.Compute(subtotal, q.discount, shipping, decimal.Zero)
	return q, nil
}

func (s *Service) checkVariant(ctx context.Context, product *models.Product, it ItemInput) error {
	variant, err := store.GetVariant(ctx, s.db, *it.VariantID)
	if err != nil {
		if errors.Is(err, database.ErrVariantNotFound) {
			return apperr.NotFound(fmt.Sprintf("Variant with ID %d not found", *it.VariantID))
		}
		return err
	}
	if variant.ProductID != product.ID {
		return apperr.NotFound(fmt.Sprintf("Variant with ID %d not found for product %s", variant.ID, product.Name))
	}
	if it.Color != nil && *it.Color != "" && (variant.Color == nil || *variant.Color != *it.Color) {
		return apperr.BadRequest(fmt.Sprintf("Color %s is not available for this variant", *it.Color))
	}
	if it.Size != nil && *it.Size != "" && !variant.HasSize(*it.Size) {
		return apperr.BadRequest(fmt.Sprintf("Size %s is not available for this variant", *it.Size))
	}
	return nil
}

func (q *quote) order(in CreateOrderInput, customerID int64, number string) *models.Order {
	o := &models.Order{
		OrderNumber:     number,
		CustomerID:      customerID,
		Name:            in.Name,
		Email:           in.Email,
		ContactNumber:   in.ContactNumber,
		ShippingAddress: in.ShippingAddress,
		District:        in.District,
		City:            in.City,
		ZipCode:         in.ZipCode,
		BillingAddress:  in.BillingAddress,
		ShippingMethod:  in.ShippingMethod,
		ShippingCharge:  q.totals.ShippingCharge,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        q.totals.Subtotal,
		DiscountAmount:  q.totals.DiscountAmount,
		TaxAmount:       q.totals.TaxAmount,
		TotalAmount:     q.totals.TotalAmount,
		Notes:           in.Notes,
		DeliveryNotes:   in.DeliveryNotes,
	}
	if q.coupon != nil {
		code := q.coupon.Code
		o.CouponCode = &code
		o.CouponDiscount = decimal.NewNullDecimal(q.discount)
	}
	return o
}
