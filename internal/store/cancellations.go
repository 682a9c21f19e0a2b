package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

const cancellationColumns = `id, order_id, customer_id, reason, details, status, vendor_response, requested_at, responded_at`

var ErrCancellationExists = apperr.BadRequest("A cancellation request already exists for this order")

func scanCancellation(row rowScanner) (*models.CancellationRequest, error) {
	c := &models.CancellationRequest{}
	err := row.Scan(
		&c.ID,
		&c.OrderID,
		&c.CustomerID,
		&c.Reason,
		&c.Details,
		&c.Status,
		&c.VendorResponse,
		&c.RequestedAt,
		&c.RespondedAt,
	)
	return c, err
}

func InsertCancellation(ctx context.Context, q database.Querier, c *models.CancellationRequest) (*models.CancellationRequest, error) {
	query := `
		INSERT INTO cancellation_requests (order_id, customer_id, reason, details, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + cancellationColumns

	created, err := scanCancellation(q.QueryRowContext(ctx, query,
		c.OrderID, c.CustomerID, c.Reason, c.Details, models.CancellationPending))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrCancellationExists
		}
		return nil, fmt.Errorf("create cancellation request: %w", err)
	}
	return created, nil
}

func GetCancellation(ctx context.Context, q database.Querier, id int64) (*models.CancellationRequest, error) {
	c, err := scanCancellation(q.QueryRowContext(ctx,
		`SELECT `+cancellationColumns+` FROM cancellation_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCancellationNotFound
		}
		return nil, fmt.Errorf("get cancellation request: %w", err)
	}
	return c, nil
}

func GetCancellationByOrder(ctx context.Context, q database.Querier, orderID int64) (*models.CancellationRequest, error) {
	c, err := scanCancellation(q.QueryRowContext(ctx,
		`SELECT `+cancellationColumns+` FROM cancellation_requests WHERE order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCancellationNotFound
		}
		return nil, fmt.Errorf("get cancellation request by order: %w", err)
	}
	return c, nil
}

// DecideCancellation moves a PENDING request to status. A request that is
// no longer PENDING is left untouched and ErrAlreadyProcessed is returned,
// so two racing decisions cannot both succeed.
func DecideCancellation(ctx context.Context, q database.Querier, id int64, status models.CancellationStatus, response string, at time.Time) (*models.CancellationRequest, error) {
	query := `
		UPDATE cancellation_requests
		SET status = $2,
		    vendor_response = $3,
		    responded_at = $4
		WHERE id = $1
		  AND status = $5
		RETURNING ` + cancellationColumns

	c, err := scanCancellation(q.QueryRowContext(ctx, query, id, status, response, at, models.CancellationPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("decide cancellation request: %w", err)
	}
	return c, nil
}

func listCancellations(ctx context.Context, q database.Querier, orderIDs []int64) (map[int64]*models.CancellationRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+cancellationColumns+` FROM cancellation_requests WHERE order_id = ANY($1)`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("list cancellation requests: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.CancellationRequest, len(orderIDs))
	for rows.Next() {
		c, err := scanCancellation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cancellation request: %w", err)
		}
		out[c.OrderID] = c
	}
	return out, rows.Err()
}
