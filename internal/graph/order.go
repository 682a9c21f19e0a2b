package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/order"
	"github.com/safar/marketplace/internal/store"
)

type orderItemInput struct {
	ProductID int32
	VariantID *int32
	Quantity  int32
	Color     *string
	Size      *string
}

type createOrderInput struct {
	Name            string
	Email           string
	ContactNumber   string
	ShippingAddress string
	District        string
	City            string
	ZipCode         string
	BillingAddress  *string
	ShippingMethod  string
	PaymentMethod   string
	Notes           *string
	DeliveryNotes   *string
	CouponCode      *string
	Items           []orderItemInput
}

func (in createOrderInput) toOrder() order.CreateOrderInput {
	out := order.CreateOrderInput{
		Name:            in.Name,
		Email:           in.Email,
		ContactNumber:   in.ContactNumber,
		ShippingAddress: in.ShippingAddress,
		District:        in.District,
		City:            in.City,
		ZipCode:         in.ZipCode,
		BillingAddress:  in.BillingAddress,
		ShippingMethod:  models.ShippingMethod(in.ShippingMethod),
		PaymentMethod:   models.PaymentMethod(in.PaymentMethod),
		Notes:           in.Notes,
		DeliveryNotes:   in.DeliveryNotes,
		CouponCode:      in.CouponCode,
		Items:           make([]order.ItemInput, len(in.Items)),
	}
	for i, it := range in.Items {
		out.Items[i] = order.ItemInput{
			ProductID: int64(it.ProductID),
			VariantID: toInt64(it.VariantID),
			Quantity:  int(it.Quantity),
			Color:     it.Color,
			Size:      it.Size,
		}
	}
	return out
}

type orderStatusInput struct {
	Status         string
	TrackingNumber *string
	Notes          *string
}

type orderFilterInput struct {
	OrderStatus   *string
	PaymentStatus *string
	PaymentMethod *string
	FromDate      *graphql.Time
	ToDate        *graphql.Time
	SearchTerm    *string
}

func (f *orderFilterInput) filter() store.OrderFilter {
	if f == nil {
		return store.OrderFilter{}
	}
	return store.OrderFilter{
		OrderStatus:   enumPtr[models.OrderStatus](f.OrderStatus),
		PaymentStatus: enumPtr[models.PaymentStatus](f.PaymentStatus),
		PaymentMethod: enumPtr[models.PaymentMethod](f.PaymentMethod),
		FromDate:      timePtr(f.FromDate),
		ToDate:        timePtr(f.ToDate),
		SearchTerm:    deref(f.SearchTerm),
	}
}

type orderListArgs struct {
	Filter *orderFilterInput
	Page   *pageInput
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct{ Input createOrderInput }) (*response[*orderView], error) {
	o, err := r.orders.CreateOrder(ctx, args.Input.toOrder())
	if err != nil {
		return nil, r.fail("createOrder", err)
	}
	return created("Order created successfully", newOrderView(o)), nil
}

func (r *Resolver) UpdateOrderStatus(ctx context.Context, args struct {
	OrderID int32
	Input   orderStatusInput
}) (*response[*orderView], error) {
	o, err := r.orders.UpdateOrderStatus(ctx, int64(args.OrderID), order.StatusUpdate{
		Status:         models.OrderStatus(args.Input.Status),
		TrackingNumber: args.Input.TrackingNumber,
		Notes:          args.Input.Notes,
	})
	if err != nil {
		return nil, r.fail("updateOrderStatus", err)
	}
	return ok("Order status updated successfully", newOrderView(o)), nil
}

func (r *Resolver) CancellationRequestByCustomer(ctx context.Context, args struct {
	OrderID int32
	Reason  string
	Details *string
}) (*response[*orderView], error) {
	o, err := r.orders.RequestCancellation(ctx, int64(args.OrderID), args.Reason, args.Details)
	if err != nil {
		return nil, r.fail("cancellationRequestByCustomer", err)
	}
	return created("Cancellation request submitted successfully", newOrderView(o)), nil
}

func (r *Resolver) ApproveCancellationRequest(ctx context.Context, args struct {
	ID       int32
	Response *string
}) (*response[*orderView], error) {
	o, err := r.orders.ApproveCancellation(ctx, int64(args.ID), args.Response)
	if err != nil {
		return nil, r.fail("approveCancellationRequest", err)
	}
	return ok("Cancellation request approved", newOrderView(o)), nil
}

func (r *Resolver) RejectCancellationRequest(ctx context.Context, args struct {
	ID       int32
	Response string
}) (*response[*orderView], error) {
	o, err := r.orders.RejectCancellation(ctx, int64(args.ID), args.Response)
	if err != nil {
		return nil, r.fail("rejectCancellationRequest", err)
	}
	return ok("Cancellation request rejected", newOrderView(o)), nil
}

func (r *Resolver) Order(ctx context.Context, args idArgs) (*response[*orderView], error) {
	o, err := r.orders.GetOrder(ctx, int64(args.ID))
	if err != nil {
		return nil, r.fail("order", err)
	}
	return ok("Order retrieved successfully", newOrderView(o)), nil
}

func (r *Resolver) Orders(ctx context.Context, args orderListArgs) (*listResponse[*orderView], error) {
	page, err := r.orders.ListOrders(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("orders", err)
	}
	return list("Orders retrieved successfully", page, newOrderView), nil
}

func (r *Resolver) MyOrders(ctx context.Context, args orderListArgs) (*listResponse[*orderView], error) {
	page, err := r.orders.ListMyOrders(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("myOrders", err)
	}
	return list("Orders retrieved successfully", page, newOrderView), nil
}

func (r *Resolver) MyShopOrders(ctx context.Context, args orderListArgs) (*listResponse[*orderView], error) {
	page, err := r.orders.ListMyShopOrders(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("myShopOrders", err)
	}
	return list("Orders retrieved successfully", page, newOrderView), nil
}
