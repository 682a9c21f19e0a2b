package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

const variantColumns = `id, product_id, color, images, sizes, created_at, updated_at`

func scanVariant(row rowScanner) (models.Variant, error) {
	var v models.Variant
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Color,
		pq.Array(&v.Images),
		pq.Array(&v.Sizes),
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func queryVariant(ctx context.Context, q database.Querier, op, query string, args ...any) (*models.Variant, error) {
	v, err := scanVariant(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrVariantNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func AddVariant(ctx context.Context, q database.Querier, v *models.Variant) (*models.Variant, error) {
	query := `
		INSERT INTO variants (product_id, color, images, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + variantColumns

	return queryVariant(ctx, q, "add variant", query,
		v.ProductID, v.Color, pq.Array(nonNil(v.Images)), pq.Array(nonNil(v.Sizes)))
}

func GetVariant(ctx context.Context, q database.Querier, id int64) (*models.Variant, error) {
	return queryVariant(ctx, q, "get variant", `SELECT `+variantColumns+` FROM variants WHERE id = $1`, id)
}

type VariantUpdate struct {
	Color *string
	// Images and Sizes replace the stored lists when non-nil.
	Images []string
	Sizes  []string
}

func UpdateVariant(ctx context.Context, q database.Querier, productID, variantID int64, u VariantUpdate) (*models.Variant, error) {
	var images, sizes any
	if u.Images != nil {
		images = pq.Array(u.Images)
	}
	if u.Sizes != nil {
		sizes = pq.Array(u.Sizes)
	}

	query := `
		UPDATE variants
		SET color = COALESCE($3, color),
		    images = COALESCE($4::TEXT[], images),
		    sizes = COALESCE($5::TEXT[], sizes),
		    updated_at = NOW()
		WHERE id = $1 AND product_id = $2
		RETURNING ` + variantColumns

	return queryVariant(ctx, q, "update variant", query, variantID, productID, u.Color, images, sizes)
}

func DeleteVariant(ctx context.Context, q database.Querier, productID, variantID int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM variants WHERE id = $1 AND product_id = $2`, variantID, productID)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	return expectOne(result, database.ErrVariantNotFound)
}

// ListVariants returns the variants of the given products keyed by product id.
func ListVariants(ctx context.Context, q database.Querier, productIDs []int64) (map[int64][]models.Variant, error) {
	out := make(map[int64][]models.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+variantColumns+` FROM variants WHERE product_id = ANY($1) ORDER BY id`,
		pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}

	return out, rows.Err()
}
