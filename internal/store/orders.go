package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

const orderColumns = `o.id, o.order_number, o.customer_id, o.name, o.email, o.contact_number,
	o.shipping_address, o.district, o.city, o.zip_code, o.billing_address, o.shipping_method,
	o.shipping_charge, o.order_date, o.delivery_date, o.order_status, o.payment_status,
	o.payment_method, o.subtotal, o.discount_amount, o.tax_amount, o.total_amount,
	o.tracking_number, o.notes, o.delivery_notes, o.is_deleted, o.is_cancelled, o.cancel_reason,
	o.coupon_code, o.coupon_discount, o.created_at, o.updated_at`

const orderItemColumns = `id, order_id, product_id, variant_id, quantity, unit_price, color, size, discount, subtotal, created_at`

var orderSortable = map[string]string{
	"createdAt":   "o.created_at",
	"updatedAt":   "o.updated_at",
	"orderDate":   "o.order_date",
	"totalAmount": "o.total_amount",
	"orderStatus": "o.order_status",
}

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Name,
		&o.Email,
		&o.ContactNumber,
		&o.ShippingAddress,
		&o.District,
		&o.City,
		&o.ZipCode,
		&o.BillingAddress,
		&o.ShippingMethod,
		&o.ShippingCharge,
		&o.OrderDate,
		&o.DeliveryDate,
		&o.OrderStatus,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.DiscountAmount,
		&o.TaxAmount,
		&o.TotalAmount,
		&o.TrackingNumber,
		&o.Notes,
		&o.DeliveryNotes,
		&o.IsDeleted,
		&o.IsCancelled,
		&o.CancelReason,
		&o.CouponCode,
		&o.CouponDiscount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanOrderItem(row rowScanner) (models.OrderItem, error) {
	var item models.OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.VariantID,
		&item.Quantity,
		&item.UnitPrice,
		&item.Color,
		&item.Size,
		&item.Discount,
		&item.Subtotal,
		&item.CreatedAt,
	)
	return item, err
}

func queryOrder(ctx context.Context, q database.Querier, op, query string, args ...any) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// InsertOrder writes the order header. Items, payment and the rest of the
// aggregate are written separately inside the same transaction.
func InsertOrder(ctx context.Context, q database.Querier, o *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders AS o (order_number, customer_id, name, email, contact_number, shipping_address,
			district, city, zip_code, billing_address, shipping_method, shipping_charge, order_date,
			order_status, payment_status, payment_method, subtotal, discount_amount, tax_amount,
			total_amount, notes, delivery_notes, coupon_code, coupon_discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, NOW(), NOW())
		RETURNING ` + orderColumns

	return queryOrder(ctx, q, "create order", query,
		o.OrderNumber, o.CustomerID, o.Name, o.Email, o.ContactNumber, o.ShippingAddress,
		o.District, o.City, o.ZipCode, o.BillingAddress, o.ShippingMethod, o.ShippingCharge,
		o.OrderStatus, o.PaymentStatus, o.PaymentMethod, o.Subtotal, o.DiscountAmount, o.TaxAmount,
		o.TotalAmount, o.Notes, o.DeliveryNotes, o.CouponCode, o.CouponDiscount)
}

func InsertOrderItem(ctx context.Context, q database.Querier, item *models.OrderItem) (*models.OrderItem, error) {
	query := `
		INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price, color, size,
			discount, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING ` + orderItemColumns

	created, err := scanOrderItem(q.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice,
		item.Color, item.Size, item.Discount, item.Subtotal))
	if err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}
	return &created, nil
}

func GetOrder(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	return queryOrder(ctx, q, "get order", `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
}

// GetOrderDetail loads the order with its items, payment and cancellation
// request.
func GetOrderDetail(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	order, err := GetOrder(ctx, q, id)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{*order}
	if err := attachOrderRelations(ctx, q, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func ListOrderItems(ctx context.Context, q database.Querier, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	out := make(map[int64][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func attachOrderRelations(ctx context.Context, q database.Querier, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := ListOrderItems(ctx, q, ids)
	if err != nil {
		return err
	}
	payments, err := listPayments(ctx, q, ids)
	if err != nil {
		return err
	}
	requests, err := listCancellations(ctx, q, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		id := orders[i].ID
		orders[i].Items = items[id]
		orders[i].Payment = payments[id]
		orders[i].CancellationRequest = requests[id]
	}
	return nil
}

// OrderVendorID resolves the vendor owning the shop of the order's first
// item. Orders are scoped to a single shop by that item.
func OrderVendorID(ctx context.Context, q database.Querier, orderID int64) (int64, error) {
	var vendorID int64
	err := q.QueryRowContext(ctx,
		`SELECT s.vendor_id
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN shops s ON s.id = p.shop_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id
		 LIMIT 1`,
		orderID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrOrderNotFound
		}
		return 0, fmt.Errorf("get order vendor: %w", err)
	}
	return vendorID, nil
}

type OrderStatusUpdate struct {
	Status         models.OrderStatus
	TrackingNumber *string
	Notes          *string
	DeliveryDate   *time.Time
}

func UpdateOrderStatus(ctx context.Context, q database.Querier, id int64, u OrderStatusUpdate) (*models.Order, error) {
	query := `
		UPDATE orders o
		SET order_status = $2,
		    tracking_number = COALESCE($3, o.tracking_number),
		    notes = COALESCE($4, o.notes),
		    delivery_date = COALESCE($5, o.delivery_date),
		    updated_at = NOW()
		WHERE o.id = $1
		RETURNING ` + orderColumns

	return queryOrder(ctx, q, "update order status", query, id, u.Status, u.TrackingNumber, u.Notes, u.DeliveryDate)
}

// MarkOrderCancelled cancels the order only while it has not reached
// DELIVERED, CANCELLED, RETURNED or REFUNDED.
func MarkOrderCancelled(ctx context.Context, q database.Querier, id int64, reason string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE orders
		 SET order_status = $2,
		     is_cancelled = TRUE,
		     cancel_reason = $3,
		     updated_at = NOW()
		 WHERE id = $1
		   AND order_status NOT IN ($4, $5, $6, $7)`,
		id, models.OrderStatusCancelled, reason,
		models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusReturned, models.OrderStatusRefunded)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return expectOne(result, database.ErrOrderNotCancellable)
}

func SetOrderPaymentStatus(ctx context.Context, q database.Querier, id int64, status models.PaymentStatus) error {
	result, err := q.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set order payment status: %w", err)
	}
	return expectOne(result, database.ErrOrderNotFound)
}

type OrderFilter struct {
	CustomerID    *int64
	VendorID      *int64
	OrderStatus   *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	PaymentMethod *models.PaymentMethod
	FromDate      *time.Time
	ToDate        *time.Time
	SearchTerm    string
}

func ListOrders(ctx context.Context, db *sql.DB, of OrderFilter, params PageParams) (*OffsetPage[models.Order], error) {
	var f filter
	f.where("o.is_deleted = FALSE")
	if of.CustomerID != nil {
		f.eq("o.customer_id", *of.CustomerID)
	}
	if of.VendorID != nil {
		f.where(`EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN shops s ON s.id = p.shop_id
			WHERE oi.order_id = o.id AND s.vendor_id = ` + f.arg(*of.VendorID) + `)`)
	}
	if of.OrderStatus != nil {
		f.eq("o.order_status", *of.OrderStatus)
	}
	if of.PaymentStatus != nil {
		f.eq("o.payment_status", *of.PaymentStatus)
	}
	if of.PaymentMethod != nil {
		f.eq("o.payment_method", *of.PaymentMethod)
	}
	if of.FromDate != nil {
		f.where("o.created_at >= " + f.arg(*of.FromDate))
	}
	if of.ToDate != nil {
		f.where("o.created_at <= " + f.arg(*of.ToDate))
	}
	f.search(of.SearchTerm, "o.order_number", "o.name", "o.email", "o.contact_number")

	page, err := listAndCount(ctx, db, orderColumns, "orders o", &f, Paginate(params, orderSortable), scanOrder)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	if err := attachOrderRelations(ctx, db, page.Items); err != nil {
		return nil, err
	}

	return page, nil
}

// CountOrders counts every order row, soft-deleted ones included.
func CountOrders(ctx context.Context, q database.Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
