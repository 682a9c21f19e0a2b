// Package graph binds the GraphQL schema to the domain services. Every
// operation answers with an envelope of statusCode, success, message and
// data; failures are returned as GraphQL errors whose extensions carry the
// error code.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/account"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/catalog"
	"github.com/safar/marketplace/internal/coupon"
	"github.com/safar/marketplace/internal/order"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 12

type Resolver struct {
	accounts *account.Service
	catalog  *catalog.Service
	coupons  *coupon.Service
	orders   *order.Service
	log      *zap.Logger
}

func NewResolver(accounts *account.Service, cat *catalog.Service, coupons *coupon.Service, orders *order.Service, log *zap.Logger) *Resolver {
	return &Resolver{
		accounts: accounts,
		catalog:  cat,
		coupons:  coupons,
		orders:   orders,
		log:      log.Named("graph"),
	}
}

// NewSchema parses the embedded schema against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r,
		graphql.UseFieldResolvers(),
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{r.log}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

type panicLogger struct {
	log *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.log.Error("resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}

// fail converts err to a coded error. Internal causes are logged here and
// replaced by a generic message.
func (r *Resolver) fail(op string, err error) error {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		r.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	}
	return appErr
}

type response[T any] struct {
	StatusCode int32
	Success    bool
	Message    string
	Data       T
}

func ok[T any](message string, data T) *response[T] {
	return &response[T]{StatusCode: http.StatusOK, Success: true, Message: message, Data: data}
}

func created[T any](message string, data T) *response[T] {
	return &response[T]{StatusCode: http.StatusCreated, Success: true, Message: message, Data: data}
}

type messageResponse struct {
	StatusCode int32
	Success    bool
	Message    string
}

func done(message string) *messageResponse {
	return &messageResponse{StatusCode: http.StatusOK, Success: true, Message: message}
}

type pageMeta struct {
	Page       int32
	Limit      int32
	Total      int32
	TotalPages int32
}

type listResponse[T any] struct {
	StatusCode int32
	Success    bool
	Message    string
	Data       []T
	Meta       *pageMeta
}

func list[M, V any](message string, page *store.OffsetPage[M], view func(*M) V) *listResponse[V] {
	data := make([]V, len(page.Items))
	for i := range page.Items {
		data[i] = view(&page.Items[i])
	}
	return &listResponse[V]{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    message,
		Data:       data,
		Meta: &pageMeta{
			Page:       int32(page.Page),
			Limit:      int32(page.Limit),
			Total:      int32(page.Total),
			TotalPages: int32(page.TotalPages),
		},
	}
}

type pageInput struct {
	Page      *int32
	Limit     *int32
	SortBy    *string
	SortOrder *string
}

func (p *pageInput) params() store.PageParams {
	var params store.PageParams
	if p == nil {
		return params
	}
	if p.Page != nil {
		params.Page = int(*p.Page)
	}
	if p.Limit != nil {
		params.Limit = int(*p.Limit)
	}
	if p.SortBy != nil {
		params.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		params.SortOrder = *p.SortOrder
	}
	return params
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toInt64(n *int32) *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

func toInt(n *int32) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

// enumPtr converts an optional enum argument to its model type.
func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}
