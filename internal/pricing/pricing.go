// Package pricing computes order lines, coupon discounts and totals. All
// amounts are decimals rounded to cents.
package pricing

import (
	"fmt"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Line struct {
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// LineTotal prices qty units at price with the product's percentage
// discount applied to the whole line.
func LineTotal(price, discountPercent decimal.Decimal, qty int) Line {
	gross := price.Mul(decimal.NewFromInt(int64(qty)))
	discount := decimal.Zero
	if discountPercent.IsPositive() {
		discount = gross.Mul(discountPercent).Div(hundred).Round(2)
	}
	return Line{
		UnitPrice: price,
		Discount:  discount,
		Subtotal:  gross.Sub(discount).Round(2),
	}
}

// ValidateCoupon checks that c can be redeemed at now against an order
// subtotal.
func ValidateCoupon(c *models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if err := CouponRedeemable(c, now); err != nil {
		return err
	}
	if c.MinPurchaseAmount.Valid && subtotal.LessThan(c.MinPurchaseAmount.Decimal) {
		return apperr.BadRequest(fmt.Sprintf("Minimum purchase amount of %s required to use this coupon",
			c.MinPurchaseAmount.Decimal.StringFixed(2)))
	}
	return nil
}

// CouponRedeemable checks the coupon's active flag, date window and usage
// limit.
func CouponRedeemable(c *models.Coupon, now time.Time) error {
	if !c.IsActive || now.Before(c.StartDate) || now.After(c.EndDate) {
		return apperr.BadRequest("Coupon is not valid or has expired")
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return apperr.BadRequest("Coupon is not valid or has expired")
	}
	return nil
}

// CouponDiscount is the amount c takes off subtotal. It never exceeds the
// subtotal.
func CouponDiscount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred).Round(2)
		if c.MaxDiscountAmount.Valid && discount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			discount = c.MaxDiscountAmount.Decimal
		}
	case models.DiscountFixedAmount:
		discount = c.DiscountValue
	}

	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// ShippingCharge is zero for free shipping and otherwise the highest charge
// among the ordered products.
func ShippingCharge(method models.ShippingMethod, products []*models.Product) decimal.Decimal {
	if method == models.ShippingFree {
		return decimal.Zero
	}
	charge := decimal.Zero
	for _, p := range products {
		if p.ShippingCharge.GreaterThan(charge) {
			charge = p.ShippingCharge
		}
	}
	return charge
}

type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCharge decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Compute returns subtotal - discount + shipping + tax.
func Compute(subtotal, discount, shipping, tax decimal.Decimal) Totals {
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCharge: shipping,
		TaxAmount:      tax,
		TotalAmount:    subtotal.Sub(discount).Add(shipping).Add(tax),
	}
}
