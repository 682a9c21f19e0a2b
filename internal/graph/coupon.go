package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/coupon"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
)

type couponInput struct {
	Code              string
	Description       *string
	DiscountType      string
	DiscountValue     Decimal
	MinPurchaseAmount *Decimal
	MaxDiscountAmount *Decimal
	StartDate         graphql.Time
	EndDate           graphql.Time
	UsageLimit        *int32
}

type couponUpdateInput struct {
	Code              *string
	Description       *string
	DiscountType      *string
	DiscountValue     *Decimal
	MinPurchaseAmount *Decimal
	MaxDiscountAmount *Decimal
	StartDate         *graphql.Time
	EndDate           *graphql.Time
	IsActive          *bool
	UsageLimit        *int32
}

type couponFilterInput struct {
	ShopID     *int32
	IsActive   *bool
	SearchTerm *string
}

func (f *couponFilterInput) filter() store.CouponFilter {
	if f == nil {
		return store.CouponFilter{}
	}
	return store.CouponFilter{ShopID: toInt64(f.ShopID), IsActive: f.IsActive, SearchTerm: deref(f.SearchTerm)}
}

type couponProductArgs struct {
	CouponID  int32
	ProductID int32
}

func (r *Resolver) CreateCoupon(ctx context.Context, args struct{ Input couponInput }) (*response[*couponView], error) {
	in := args.Input
	c, err := r.coupons.CreateCoupon(ctx, coupon.Input{
		Code:              in.Code,
		Description:       in.Description,
		DiscountType:      models.DiscountType(in.DiscountType),
		DiscountValue:     in.DiscountValue.Decimal,
		MinPurchaseAmount: in.MinPurchaseAmount.unwrap(),
		MaxDiscountAmount: in.MaxDiscountAmount.unwrap(),
		StartDate:         in.StartDate.Time,
		EndDate:           in.EndDate.Time,
		UsageLimit:        toInt(in.UsageLimit),
	})
	if err != nil {
		return nil, r.fail("createCoupon", err)
	}
	return created("Coupon created successfully", newCouponView(c)), nil
}

func (r *Resolver) UpdateCoupon(ctx context.Context, args struct {
	ID    int32
	Input couponUpdateInput
}) (*response[*couponView], error) {
	in := args.Input
	c, err := r.coupons.UpdateCoupon(ctx, int64(args.ID), store.CouponUpdate{
		Code:              in.Code,
		Description:       in.Description,
		DiscountType:      enumPtr[models.DiscountType](in.DiscountType),
		DiscountValue:     in.DiscountValue.unwrap(),
		MinPurchaseAmount: in.MinPurchaseAmount.unwrap(),
		MaxDiscountAmount: in.MaxDiscountAmount.unwrap(),
		StartDate:         timePtr(in.StartDate),
		EndDate:           timePtr(in.EndDate),
		IsActive:          in.IsActive,
		UsageLimit:        toInt(in.UsageLimit),
	})
	if err != nil {
		return nil, r.fail("updateCoupon", err)
	}
	return ok("Coupon updated successfully", newCouponView(c)), nil
}

func (r *Resolver) DeleteCoupon(ctx context.Context, args idArgs) (*messageResponse, error) {
	if err := r.coupons.DeleteCoupon(ctx, int64(args.ID)); err != nil {
		return nil, r.fail("deleteCoupon", err)
	}
	return done("Coupon deleted successfully"), nil
}

func (r *Resolver) ApplyCouponToProduct(ctx context.Context, args couponProductArgs) (*response[*productView], error) {
	p, err := r.coupons.ApplyToProduct(ctx, int64(args.CouponID), int64(args.ProductID))
	if err != nil {
		return nil, r.fail("applyCouponToProduct", err)
	}
	return ok("Coupon applied to product successfully", newProductView(p)), nil
}

func (r *Resolver) RemoveCouponFromProduct(ctx context.Context, args couponProductArgs) (*response[*productView], error) {
	p, err := r.coupons.RemoveFromProduct(ctx, int64(args.CouponID), int64(args.ProductID))
	if err != nil {
		return nil, r.fail("removeCouponFromProduct", err)
	}
	return ok("Coupon removed from product successfully", newProductView(p)), nil
}

func (r *Resolver) Coupon(ctx context.Context, args idArgs) (*response[*couponView], error) {
	c, err := r.coupons.GetCoupon(ctx, int64(args.ID))
	if err != nil {
		return nil, r.fail("coupon", err)
	}
	return ok("Coupon retrieved successfully", newCouponView(c)), nil
}

func (r *Resolver) Coupons(ctx context.Context, args struct {
	Filter *couponFilterInput
	Page   *pageInput
}) (*listResponse[*couponView], error) {
	page, err := r.coupons.ListCoupons(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("coupons", err)
	}
	return list("Coupons retrieved successfully", page, newCouponView), nil
}

func (r *Resolver) MyShopCoupons(ctx context.Context, args struct {
	Filter *couponFilterInput
	Page   *pageInput
}) (*listResponse[*couponView], error) {
	page, err := r.coupons.ListMyShopCoupons(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("myShopCoupons", err)
	}
	return list("Coupons retrieved successfully", page, newCouponView), nil
}
