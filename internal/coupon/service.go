// Package coupon manages shop-scoped discount codes and their assignment to
// products. Redemption happens during order placement.
package coupon

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/pricing"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(db *sql.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, log: log.Named("coupon"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Input struct {
	Code              string
	Description       *string
	DiscountType      models.DiscountType
	DiscountValue     decimal.Decimal
	MinPurchaseAmount *decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        *int
}

func (in Input) validate() error {
	switch {
	case strings.TrimSpace(in.Code) == "":
		return apperr.BadRequest("code is required")
	case !in.DiscountType.Valid():
		return apperr.BadRequest("Invalid discount type")
	}
	if err := validateRule(in.DiscountType, in.DiscountValue, in.UsageLimit); err != nil {
		return err
	}
	return validateWindow(in.StartDate, in.EndDate)
}

func validateRule(typ models.DiscountType, value decimal.Decimal, limit *int) error {
	switch {
	case !value.IsPositive():
		return apperr.BadRequest("discountValue must be positive")
	case typ == models.DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)):
		return apperr.BadRequest("Percentage discount cannot exceed 100")
	case limit != nil && *limit < 1:
		return apperr.BadRequest("usageLimit must be at least 1")
	}
	return nil
}

func validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return apperr.BadRequest("End date must be after start date")
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// CreateCoupon adds a coupon to the calling vendor's shop.
func (s *Service) CreateCoupon(ctx context.Context, in Input) (*models.Coupon, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.CreateCoupon, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	shop, err := store.GetShopByVendor(ctx, s.db, caller.VendorID)
	if err != nil {
		if errors.Is(err, database.ErrShopNotFound) {
			return nil, apperr.NotFound("Vendor or shop not found")
		}
		return nil, err
	}

	c, err := store.CreateCoupon(ctx, s.db, &models.Coupon{
		ShopID:            shop.ID,
		Code:              strings.TrimSpace(in.Code),
		Description:       in.Description,
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		MinPurchaseAmount: nullDecimal(in.MinPurchaseAmount),
		MaxDiscountAmount: nullDecimal(in.MaxDiscountAmount),
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		UsageLimit:        in.UsageLimit,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("coupon created", zap.Int64("coupon_id", c.ID), zap.Int64("shop_id", shop.ID))
	return c, nil
}

// owned loads the coupon and checks the caller's vendor owns its shop.
func (s *Service) owned(ctx context.Context, id int64) (*models.Coupon, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAttempt(caller, policy.ManageCoupon); err != nil {
		return nil, err
	}

	c, err := store.GetCoupon(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	shop, err := store.GetShop(ctx, s.db, c.ShopID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(caller, policy.ManageCoupon, policy.Resource{VendorID: shop.VendorID}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCoupon(ctx context.Context, id int64, u store.CouponUpdate) (*models.Coupon, error) {
	c, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	typ, value := c.DiscountType, c.DiscountValue
	if u.DiscountType != nil {
		if !u.DiscountType.Valid() {
			return nil, apperr.BadRequest("Invalid discount type")
		}
		typ = *u.DiscountType
	}
	if u.DiscountValue != nil {
		value = *u.DiscountValue
	}
	if err := validateRule(typ, value, u.UsageLimit); err != nil {
		return nil, err
	}

	start, end := c.StartDate, c.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = *u.EndDate
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	return store.UpdateCoupon(ctx, s.db, id, u)
}

// DeleteCoupon removes a coupon that no product uses.
func (s *Service) DeleteCoupon(ctx context.Context, id int64) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}

	n, err := store.CountProductsWithCoupon(ctx, s.db, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.BadRequest("Cannot delete coupon that is applied to products. Remove it from products first.")
	}

	if err := store.DeleteCoupon(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("coupon deleted", zap.Int64("coupon_id", id))
	return nil
}

// ApplyToProduct attaches a currently valid coupon to one of the vendor's
// products. A product carries at most one coupon.
func (s *Service) ApplyToProduct(ctx context.Context, couponID, productID int64) (*models.Product, error) {
	c, err := s.owned(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if err := pricing.CouponRedeemable(c, s.now()); err != nil {
		return nil, apperr.BadRequest("Coupon is not currently valid")
	}

	product, err := s.ownedProduct(ctx, c, productID)
	if err != nil {
		return nil, err
	}
	if product.CouponID != nil {
		return nil, apperr.BadRequest("Product already has a coupon. Remove it first.")
	}

	if _, err := store.SetProductCoupon(ctx, s.db, productID, &c.ID); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, productID)
}

// RemoveFromProduct detaches the coupon from the product.
func (s *Service) RemoveFromProduct(ctx context.Context, couponID, productID int64) (*models.Product, error) {
	c, err := s.owned(ctx, couponID)
	if err != nil {
		return nil, err
	}
	product, err := s.ownedProduct(ctx, c, productID)
	if err != nil {
		return nil, err
	}
	if product.CouponID == nil || *product.CouponID != c.ID {
		return nil, apperr.BadRequest("Coupon is not applied to this product")
	}

	if _, err := store.SetProductCoupon(ctx, s.db, productID, nil); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, productID)
}

func (s *Service) ownedProduct(ctx context.Context, c *models.Coupon, productID int64) (*models.Product, error) {
	product, err := store.GetProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product.ShopID != c.ShopID {
		return nil, apperr.Forbidden("You can only apply coupons to your products")
	}
	return product, nil
}

func (s *Service) GetCoupon(ctx context.Context, id int64) (*models.Coupon, error) {
	return store.GetCoupon(ctx, s.db, id)
}

func (s *Service) ListCoupons(ctx context.Context, f store.CouponFilter, p store.PageParams) (*store.OffsetPage[models.Coupon], error) {
	return store.ListCoupons(ctx, s.db, f, p)
}

// ListMyShopCoupons lists the coupons of the calling vendor's shop.
func (s *Service) ListMyShopCoupons(ctx context.Context, f store.CouponFilter, p store.PageParams) (*store.OffsetPage[models.Coupon], error) {
	caller, err := policy.Authorize(ctx, s.db, policy.CreateCoupon, policy.Resource{})
	if err != nil {
		return nil, err
	}
	shop, err := store.GetShopByVendor(ctx, s.db, caller.VendorID)
	if err != nil {
		return nil, err
	}
	f.ShopID = &shop.ID
	return store.ListCoupons(ctx, s.db, f, p)
}
