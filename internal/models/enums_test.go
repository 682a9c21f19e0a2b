package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusFinal(t *testing.T) {
	final := []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded}
	open := []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusConfirmed, OrderStatusShipped}

	for _, s := range final {
		assert.True(t, s.Final(), s)
	}
	for _, s := range open {
		assert.False(t, s.Final(), s)
	}
}

func TestEnumValid(t *testing.T) {
	assert.True(t, RoleVendor.Valid())
	assert.False(t, Role("OWNER").Valid())
	assert.True(t, PaymentMethodBkash.Valid())
	assert.False(t, PaymentMethod("PAYPAL").Valid())
	assert.True(t, CategoryItem.Valid())
	assert.False(t, OrderStatus("pending").Valid())
}

func TestVariantHasSize(t *testing.T) {
	v := Variant{Sizes: []string{"S", "M"}}
	assert.True(t, v.HasSize("M"))
	assert.False(t, v.HasSize("XL"))
}
