package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/account"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/catalog"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/coupon"
	"github.com/safar/marketplace/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestSchema binds the schema to services without a database. Only
// operations rejected before any query can run against it.
func newTestSchema(t *testing.T) *graphql.Schema {
	t.Helper()

	log := zap.NewNop()
	tokens := auth.NewTokens(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "marketplace"})
	r := NewResolver(
		account.NewService(nil, tokens, log),
		catalog.NewService(nil, log),
		coupon.NewService(nil, log),
		order.NewService(nil, log),
		log,
	)

	schema, err := NewSchema(r)
	require.NoError(t, err)
	return schema
}

func TestNewSchema(t *testing.T) {
	newTestSchema(t)
}

func TestAnonymousCallsAreUnauthorized(t *testing.T) {
	schema := newTestSchema(t)

	tests := []struct {
		name      string
		query     string
		variables string
		field     string
	}{
		{
			name:  "me",
			query: `{ me { success data { id email } } }`,
			field: "me",
		},
		{
			name: "create order",
			query: `mutation Create($input: CreateOrderInput!) {
				createOrder(input: $input) { statusCode data { orderNumber totalAmount } }
			}`,
			variables: `{"input": {
				"name": "Rahim",
				"email": "rahim@example.com",
				"contactNumber": "01700000000",
				"shippingAddress": "House 1, Road 2",
				"district": "Dhaka",
				"city": "Dhaka",
				"zipCode": "1207",
				"shippingMethod": "REDX",
				"paymentMethod": "CASH_ON_DELIVERY",
				"items": [{"productId": 1, "quantity": 2}]
			}}`,
			field: "createOrder",
		},
		{
			name:  "approve cancellation",
			query: `mutation { approveCancellationRequest(id: 7) { success } }`,
			field: "approveCancellationRequest",
		},
		{
			name:  "my shop orders",
			query: `{ myShopOrders(page: {page: 1, limit: 5}) { meta { total } } }`,
			field: "myShopOrders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var variables map[string]interface{}
			if tt.variables != "" {
				require.NoError(t, json.Unmarshal([]byte(tt.variables), &variables))
			}

			resp := schema.Exec(context.Background(), tt.query, "", variables)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, string(apperr.CodeUnauthorized), resp.Errors[0].Extensions["code"])
			assert.JSONEq(t, `{"`+tt.field+`": null}`, string(resp.Data))
		})
	}
}

func TestUnknownEnumValueFailsValidation(t *testing.T) {
	schema := newTestSchema(t)

	resp := schema.Exec(context.Background(),
		`mutation { updateOrderStatus(orderId: 1, input: {status: LOST}) { success } }`, "", nil)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "LOST")
}

func TestFailHidesInternalCause(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := &Resolver{log: zap.New(core)}

	err := r.fail("createOrder", errors.New("pq: connection refused"))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
	assert.Equal(t, "Internal server error", err.Error())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "createOrder", logs.All()[0].ContextMap()["op"])

	err = r.fail("createOrder", apperr.BadRequest("Invalid coupon code"))
	assert.EqualError(t, err, "Invalid coupon code")
	assert.Equal(t, 1, logs.Len())
}

func TestPageInputDefaults(t *testing.T) {
	var missing *pageInput
	assert.Equal(t, 0, missing.params().Page)

	page, limit, sortOrder := int32(3), int32(25), "asc"
	params := (&pageInput{Page: &page, Limit: &limit, SortOrder: &sortOrder}).params()
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, "asc", params.SortOrder)
	assert.Empty(t, params.SortBy)
}
