package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

const couponColumns = `id, shop_id, code, description, discount_type, discount_value, min_purchase_amount,
	max_discount_amount, start_date, end_date, is_active, usage_limit, usage_count, created_at, updated_at`

var couponSortable = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"discountValue": "discount_value",
	"startDate":     "start_date",
	"endDate":       "end_date",
}

func scanCoupon(row rowScanner) (models.Coupon, error) {
	var c models.Coupon
	var usageLimit sql.NullInt64
	err := row.Scan(
		&c.ID,
		&c.ShopID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinPurchaseAmount,
		&c.MaxDiscountAmount,
		&c.StartDate,
		&c.EndDate,
		&c.IsActive,
		&usageLimit,
		&c.UsageCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}
	return c, err
}

func queryCoupon(ctx context.Context, q database.Querier, op, query string, args ...any) (*models.Coupon, error) {
	c, err := scanCoupon(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, database.ErrCouponNotFound
		case database.IsUniqueViolation(err):
			return nil, apperr.Conflict("Coupon code already exists")
		case database.IsCheckViolation(err):
			return nil, apperr.BadRequest("Coupon dates or usage limit are invalid")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func CreateCoupon(ctx context.Context, q database.Querier, c *models.Coupon) (*models.Coupon, error) {
	query := `
		INSERT INTO coupons (shop_id, code, description, discount_type, discount_value, min_purchase_amount,
			max_discount_amount, start_date, end_date, is_active, usage_limit, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, 0, NOW(), NOW())
		RETURNING ` + couponColumns

	return queryCoupon(ctx, q, "create coupon", query,
		c.ShopID, c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinPurchaseAmount,
		c.MaxDiscountAmount, c.StartDate, c.EndDate, c.UsageLimit)
}

func GetCoupon(ctx context.Context, q database.Querier, id int64) (*models.Coupon, error) {
	return queryCoupon(ctx, q, "get coupon", `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
}

func GetCouponByCode(ctx context.Context, q database.Querier, code string) (*models.Coupon, error) {
	return queryCoupon(ctx, q, "get coupon by code", `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
}

type CouponUpdate struct {
	Code              *string
	Description       *string
	DiscountType      *models.DiscountType
	DiscountValue     *decimal.Decimal
	MinPurchaseAmount *decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	StartDate         *time.Time
	EndDate           *time.Time
	IsActive          *bool
	UsageLimit        *int
}

func UpdateCoupon(ctx context.Context, q database.Querier, id int64, u CouponUpdate) (*models.Coupon, error) {
	query := `
		UPDATE coupons
		SET code = COALESCE($2, code),
		    description = COALESCE($3, description),
		    discount_type = COALESCE($4, discount_type),
		    discount_value = COALESCE($5, discount_value),
		    min_purchase_amount = COALESCE($6, min_purchase_amount),
		    max_discount_amount = COALESCE($7, max_discount_amount),
		    start_date = COALESCE($8, start_date),
		    end_date = COALESCE($9, end_date),
		    is_active = COALESCE($10, is_active),
		    usage_limit = COALESCE($11, usage_limit),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + couponColumns

	return queryCoupon(ctx, q, "update coupon", query,
		id, u.Code, u.Description, u.DiscountType, u.DiscountValue, u.MinPurchaseAmount,
		u.MaxDiscountAmount, u.StartDate, u.EndDate, u.IsActive, u.UsageLimit)
}

func DeleteCoupon(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.BadRequest("Coupon is applied to products. Remove it from products first")
		}
		return fmt.Errorf("delete coupon: %w", err)
	}
	return expectOne(result, database.ErrCouponNotFound)
}

// IncrementCouponUsage consumes one use of the coupon. The update only
// applies while the coupon is active and under its usage limit, so the count
// can never pass the limit under concurrent orders.
func IncrementCouponUsage(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE coupons
		 SET usage_count = usage_count + 1,
		     updated_at = NOW()
		 WHERE id = $1
		   AND is_active = TRUE
		   AND (usage_limit IS NULL OR usage_count < usage_limit)`,
		id)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	return expectOne(result, database.ErrCouponExhausted)
}

type CouponFilter struct {
	ShopID     *int64
	IsActive   *bool
	SearchTerm string
}

func ListCoupons(ctx context.Context, db *sql.DB, cf CouponFilter, params PageParams) (*OffsetPage[models.Coupon], error) {
	var f filter
	if cf.ShopID != nil {
		f.eq("shop_id", *cf.ShopID)
	}
	if cf.IsActive != nil {
		f.eq("is_active", *cf.IsActive)
	}
	f.search(cf.SearchTerm, "code", "description")

	page, err := listAndCount(ctx, db, couponColumns, "coupons", &f, Paginate(params, couponSortable), scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return page, nil
}
