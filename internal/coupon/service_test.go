package coupon_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/coupon"
	"github.com/safar/marketplace/internal/dbtest"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CouponSuite struct {
	suite.Suite
	db   *sql.DB
	svc  *coupon.Service
	seed *dbtest.Seed

	vendor dbtest.Account
	shop   *models.Shop
}

func TestCouponSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(CouponSuite))
}

func (s *CouponSuite) SetupSuite() {
	s.db = dbtest.New(s.T())
	s.svc = coupon.NewService(s.db, zap.NewNop())
}

func (s *CouponSuite) SetupTest() {
	dbtest.Reset(s.T(), s.db)
	s.seed = dbtest.NewSeed(s.T(), s.db)
	s.vendor = s.seed.Account(models.RoleVendor)
	s.shop = s.seed.Shop(s.vendor)
}

func (s *CouponSuite) input(code string) coupon.Input {
	now := time.Now()
	return coupon.Input{
		Code:          code,
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(48 * time.Hour),
	}
}

func (s *CouponSuite) TestCreateAndValidate() {
	ctx := s.vendor.Context(context.Background())

	c, err := s.svc.CreateCoupon(ctx, s.input("EID10"))
	s.Require().NoError(err)
	s.Equal(s.shop.ID, c.ShopID)
	s.True(c.IsActive)
	s.Equal(0, c.UsageCount)

	_, err = s.svc.CreateCoupon(ctx, s.input("EID10"))
	s.Equal(apperr.CodeConflict, apperr.CodeOf(err))

	bad := s.input("BACKWARDS")
	bad.EndDate = bad.StartDate.Add(-time.Minute)
	_, err = s.svc.CreateCoupon(ctx, bad)
	s.EqualError(err, "End date must be after start date")

	customer := s.seed.Account(models.RoleCustomer)
	_, err = s.svc.CreateCoupon(customer.Context(context.Background()), s.input("NOPE"))
	s.Equal(apperr.CodeForbidden, apperr.CodeOf(err))
}

func (s *CouponSuite) TestApplyRemoveDelete() {
	ctx := s.vendor.Context(context.Background())
	c, err := s.svc.CreateCoupon(ctx, s.input("FLASH"))
	s.Require().NoError(err)
	product := s.seed.Product(s.shop, s.seed.ItemCategory(), "100.00", 3)

	applied, err := s.svc.ApplyToProduct(ctx, c.ID, product.ID)
	s.Require().NoError(err)
	s.Equal(&c.ID, applied.CouponID)

	_, err = s.svc.ApplyToProduct(ctx, c.ID, product.ID)
	s.EqualError(err, "Product already has a coupon. Remove it first.")

	err = s.svc.DeleteCoupon(ctx, c.ID)
	s.Equal(apperr.CodeBadRequest, apperr.CodeOf(err))

	removed, err := s.svc.RemoveFromProduct(ctx, c.ID, product.ID)
	s.Require().NoError(err)
	s.Nil(removed.CouponID)

	s.Require().NoError(s.svc.DeleteCoupon(ctx, c.ID))
	_, err = s.svc.GetCoupon(context.Background(), c.ID)
	s.Equal(apperr.CodeNotFound, apperr.CodeOf(err))
}

func (s *CouponSuite) TestForeignVendor() {
	c, err := s.svc.CreateCoupon(s.vendor.Context(context.Background()), s.input("MINE"))
	s.Require().NoError(err)

	other := s.seed.Account(models.RoleVendor)
	otherShop := s.seed.Shop(other)
	_, err = s.svc.UpdateCoupon(other.Context(context.Background()), c.ID, store.CouponUpdate{IsActive: ptr(false)})
	s.Equal(apperr.CodeForbidden, apperr.CodeOf(err))

	foreign := s.seed.Product(otherShop, s.seed.ItemCategory(), "10.00", 1)
	_, err = s.svc.ApplyToProduct(s.vendor.Context(context.Background()), c.ID, foreign.ID)
	s.Equal(apperr.CodeForbidden, apperr.CodeOf(err))
}

func (s *CouponSuite) TestApplyExpired() {
	c, err := s.svc.CreateCoupon(s.vendor.Context(context.Background()), s.input("OLD"))
	s.Require().NoError(err)
	product := s.seed.Product(s.shop, s.seed.ItemCategory(), "100.00", 3)

	later := coupon.NewService(s.db, zap.NewNop(), coupon.WithClock(func() time.Time {
		return time.Now().Add(72 * time.Hour)
	}))
	_, err = later.ApplyToProduct(s.vendor.Context(context.Background()), c.ID, product.ID)
	s.EqualError(err, "Coupon is not currently valid")
}

func (s *CouponSuite) TestUsageNeverPassesLimit() {
	limit := 2
	c := s.seed.Coupon(s.shop, "5", &limit)
	ctx := context.Background()

	s.Require().NoError(store.IncrementCouponUsage(ctx, s.db, c.ID))
	s.Require().NoError(store.IncrementCouponUsage(ctx, s.db, c.ID))
	err := store.IncrementCouponUsage(ctx, s.db, c.ID)
	s.Equal(apperr.CodeBadRequest, apperr.CodeOf(err))

	got, err := store.GetCoupon(ctx, s.db, c.ID)
	s.Require().NoError(err)
	s.Equal(2, got.UsageCount)
}

func (s *CouponSuite) TestListMyShopCoupons() {
	ctx := s.vendor.Context(context.Background())
	_, err := s.svc.CreateCoupon(ctx, s.input("ONE"))
	s.Require().NoError(err)
	_, err = s.svc.CreateCoupon(ctx, s.input("TWO"))
	s.Require().NoError(err)

	page, err := s.svc.ListMyShopCoupons(ctx, store.CouponFilter{SearchTerm: "on"}, store.PageParams{})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
}

func ptr[T any](v T) *T { return &v }
