package pricing

import (
	"testing"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NullDecimal{Decimal: d(s), Valid: true} }

func TestLineTotal(t *testing.T) {
	line := LineTotal(d("19.99"), d("10"), 3)

	assert.True(t, d("19.99").Equal(line.UnitPrice))
	assert.True(t, d("6.00").Equal(line.Discount), line.Discount.String())
	assert.True(t, d("53.97").Equal(line.Subtotal), line.Subtotal.String())

	plain := LineTotal(d("100"), decimal.Zero, 2)
	assert.True(t, decimal.Zero.Equal(plain.Discount))
	assert.True(t, d("200").Equal(plain.Subtotal))
}

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	one := 1
	base := func() *models.Coupon {
		return &models.Coupon{
			IsActive:  true,
			StartDate: now.Add(-24 * time.Hour),
			EndDate:   now.Add(24 * time.Hour),
		}
	}

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		total  string
		ok     bool
	}{
		{"valid", func(c *models.Coupon) {}, "10", true},
		{"inactive", func(c *models.Coupon) { c.IsActive = false }, "10", false},
		{"not started", func(c *models.Coupon) { c.StartDate = now.Add(time.Hour) }, "10", false},
		{"expired", func(c *models.Coupon) { c.EndDate = now.Add(-time.Hour) }, "10", false},
		{"usage exhausted", func(c *models.Coupon) { c.UsageLimit = &one; c.UsageCount = 1 }, "10", false},
		{"usage left", func(c *models.Coupon) { c.UsageLimit = &one }, "10", true},
		{"below minimum", func(c *models.Coupon) { c.MinPurchaseAmount = nd("50") }, "49.99", false},
		{"at minimum", func(c *models.Coupon) { c.MinPurchaseAmount = nd("50") }, "50", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := ValidateCoupon(c, d(tt.total), now)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.CodeBadRequest, apperr.CodeOf(err))
		})
	}
}

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal string
		want     string
	}{
		{"percentage", models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: d("10")}, "250", "25"},
		{"percentage capped", models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: d("50"), MaxDiscountAmount: nd("30")}, "100", "30"},
		{"fixed", models.Coupon{DiscountType: models.DiscountFixedAmount, DiscountValue: d("15")}, "100", "15"},
		{"fixed above subtotal", models.Coupon{DiscountType: models.DiscountFixedAmount, DiscountValue: d("150")}, "100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CouponDiscount(&tt.coupon, d(tt.subtotal))
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestShippingCharge(t *testing.T) {
	products := []*models.Product{
		{ShippingCharge: d("60")},
		{ShippingCharge: d("120")},
	}

	assert.True(t, decimal.Zero.Equal(ShippingCharge(models.ShippingFree, products)))
	assert.True(t, d("120").Equal(ShippingCharge(models.ShippingRedx, products)))
}

func TestCompute(t *testing.T) {
	totals := Compute(d("500"), d("50"), d("60"), decimal.Zero)
	assert.True(t, d("510").Equal(totals.TotalAmount))
}
