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
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, order_id, payment_method, transaction_id, amount, payment_status, payment_date,
	refund_amount, refund_reason, refund_transaction_id, refund_date, created_at, updated_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.PaymentMethod,
		&p.TransactionID,
		&p.Amount,
		&p.PaymentStatus,
		&p.PaymentDate,
		&p.RefundAmount,
		&p.RefundReason,
		&p.RefundTransactionID,
		&p.RefundDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func InsertPayment(ctx context.Context, q database.Querier, p *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (order_id, payment_method, transaction_id, amount, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + paymentColumns

	created, err := scanPayment(q.QueryRowContext(ctx, query,
		p.OrderID, p.PaymentMethod, p.TransactionID, p.Amount, p.PaymentStatus))
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return created, nil
}

func GetPaymentByOrder(ctx context.Context, q database.Querier, orderID int64) (*models.Payment, error) {
	p, err := scanPayment(q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

type Refund struct {
	Reason        string
	TransactionID string
	At            time.Time
}

// RefundIfPaid moves a PAID payment to REFUNDED for its full amount and
// reports whether a refund happened. Payments in any other state are left
// alone.
func RefundIfPaid(ctx context.Context, q database.Querier, orderID int64, r Refund) (decimal.Decimal, bool, error) {
	var amount decimal.Decimal
	err := q.QueryRowContext(ctx,
		`UPDATE payments
		 SET payment_status = $2,
		     refund_amount = amount,
		     refund_reason = $3,
		     refund_transaction_id = $4,
		     refund_date = $5,
		     updated_at = NOW()
		 WHERE order_id = $1
		   AND payment_status = $6
		 RETURNING refund_amount`,
		orderID, models.PaymentStatusRefunded, r.Reason, r.TransactionID, r.At, models.PaymentStatusPaid).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("refund payment: %w", err)
	}
	return amount, true, nil
}

func listPayments(ctx context.Context, q database.Querier, orderIDs []int64) (map[int64]*models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = ANY($1)`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.Payment, len(orderIDs))
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out[p.OrderID] = p
	}
	return out, rows.Err()
}
