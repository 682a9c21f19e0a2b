package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/dbtest"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	db       *sql.DB
	seed     *dbtest.Seed
	customer dbtest.Account
	shop     *models.Shop
	category *models.Category
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.db = dbtest.New(s.T())
}

func (s *StoreSuite) SetupTest() {
	dbtest.Reset(s.T(), s.db)
	s.seed = dbtest.NewSeed(s.T(), s.db)
	s.customer = s.seed.Account(models.RoleCustomer)
	s.shop = s.seed.Shop(s.seed.Account(models.RoleVendor))
	s.category = s.seed.ItemCategory()
}

func (s *StoreSuite) insertOrder(total string, payment models.PaymentStatus) *models.Order {
	ctx := context.Background()
	amount := decimal.RequireFromString(total)

	o, err := store.InsertOrder(ctx, s.db, &models.Order{
		OrderNumber:     "ORD-" + uuid.NewString()[:8],
		CustomerID:      s.customer.Profile.ID,
		Name:            "Customer",
		Email:           s.customer.User.Email,
		ContactNumber:   "01700000000",
		ShippingAddress: "Road 1",
		District:        "Dhaka",
		City:            "Dhaka",
		ZipCode:         "1207",
		ShippingMethod:  models.ShippingFree,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   payment,
		PaymentMethod:   models.PaymentMethodBkash,
		Subtotal:        amount,
		TotalAmount:     amount,
	})
	s.Require().NoError(err)

	txn := "TXN-" + uuid.NewString()[:8]
	_, err = store.InsertPayment(ctx, s.db, &models.Payment{
		OrderID:       o.ID,
		PaymentMethod: models.PaymentMethodBkash,
		TransactionID: &txn,
		Amount:        amount,
		PaymentStatus: payment,
	})
	s.Require().NoError(err)
	return o
}

func (s *StoreSuite) TestConcurrentStockDecrement() {
	ctx := context.Background()
	product := s.seed.Product(s.shop, s.category, "100.00", 10)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
				return store.DecrementStock(ctx, tx, product.ID, 2)
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, database.ErrInsufficientStock):
				rejected++
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(5, succeeded)
	s.Equal(3, rejected)

	final, err := store.GetProduct(ctx, s.db, product.ID)
	s.Require().NoError(err)
	s.Equal(0, final.StockQuantity)
}

func (s *StoreSuite) TestDecrementStockNeedsActiveProduct() {
	ctx := context.Background()
	product := s.seed.Product(s.shop, s.category, "100.00", 10)

	inactive := models.ProductStatusInactive
	_, err := store.UpdateProduct(ctx, s.db, product.ID, store.ProductUpdate{Status: &inactive})
	s.Require().NoError(err)

	err = store.DecrementStock(ctx, s.db, product.ID, 1)
	s.ErrorIs(err, database.ErrInsufficientStock)

	s.Require().NoError(store.IncrementStock(ctx, s.db, product.ID, 3))
	final, err := store.GetProduct(ctx, s.db, product.ID)
	s.Require().NoError(err)
	s.Equal(13, final.StockQuantity)

	s.ErrorIs(store.IncrementStock(ctx, s.db, 999999, 1), database.ErrProductNotFound)
}

func (s *StoreSuite) TestCouponUsageNeverPassesLimit() {
	ctx := context.Background()
	limit := 3
	coupon := s.seed.Coupon(s.shop, "50", &limit)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.IncrementCouponUsage(ctx, s.db, coupon.ID)
		}()
	}
	wg.Wait()
	close(errs)

	exhausted := 0
	for err := range errs {
		if err != nil {
			s.ErrorIs(err, database.ErrCouponExhausted)
			exhausted++
		}
	}
	s.Equal(3, exhausted)

	final, err := store.GetCoupon(ctx, s.db, coupon.ID)
	s.Require().NoError(err)
	s.Equal(3, final.UsageCount)
}

func (s *StoreSuite) TestDecideCancellationOnce() {
	ctx := context.Background()
	o := s.insertOrder("500.00", models.PaymentStatusUnpaid)

	req, err := store.InsertCancellation(ctx, s.db, &models.CancellationRequest{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Reason:     "Changed my mind",
	})
	s.Require().NoError(err)

	_, err = store.InsertCancellation(ctx, s.db, &models.CancellationRequest{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Reason:     "Again",
	})
	s.ErrorIs(err, store.ErrCancellationExists)

	decisions := []models.CancellationStatus{models.CancellationApproved, models.CancellationRejected}
	errs := make([]error, len(decisions))
	var wg sync.WaitGroup
	for i, status := range decisions {
		wg.Add(1)
		go func(i int, status models.CancellationStatus) {
			defer wg.Done()
			_, errs[i] = store.DecideCancellation(ctx, s.db, req.ID, status, fmt.Sprintf("decided %s", status), time.Now())
		}(i, status)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			s.ErrorIs(err, database.ErrAlreadyProcessed)
			failed++
		}
	}
	s.Equal(1, failed)

	final, err := store.GetCancellation(ctx, s.db, req.ID)
	s.Require().NoError(err)
	s.NotEqual(models.CancellationPending, final.Status)
	s.NotNil(final.RespondedAt)
}

func (s *StoreSuite) TestMarkOrderCancelledSkipsFinishedOrders() {
	ctx := context.Background()

	open := s.insertOrder("100.00", models.PaymentStatusUnpaid)
	s.Require().NoError(store.MarkOrderCancelled(ctx, s.db, open.ID, "Changed my mind"))
	s.ErrorIs(store.MarkOrderCancelled(ctx, s.db, open.ID, "Again"), database.ErrOrderNotCancellable)

	for _, status := range []models.OrderStatus{
		models.OrderStatusDelivered, models.OrderStatusReturned, models.OrderStatusRefunded,
	} {
		o := s.insertOrder("100.00", models.PaymentStatusUnpaid)
		_, err := s.db.Exec(`UPDATE orders SET order_status = $2 WHERE id = $1`, o.ID, status)
		s.Require().NoError(err)

		s.ErrorIs(store.MarkOrderCancelled(ctx, s.db, o.ID, "Too late"), database.ErrOrderNotCancellable, status)

		got, err := store.GetOrder(ctx, s.db, o.ID)
		s.Require().NoError(err)
		s.Equal(status, got.OrderStatus)
		s.False(got.IsCancelled)
	}
}

func (s *StoreSuite) TestRefundIfPaid() {
	ctx := context.Background()
	refund := store.Refund{Reason: "Order cancellation approved", TransactionID: "RFD-1", At: time.Now()}

	unpaid := s.insertOrder("250.00", models.PaymentStatusUnpaid)
	_, refunded, err := store.RefundIfPaid(ctx, s.db, unpaid.ID, refund)
	s.Require().NoError(err)
	s.False(refunded)

	paid := s.insertOrder("1250.50", models.PaymentStatusPaid)
	amount, refunded, err := store.RefundIfPaid(ctx, s.db, paid.ID, refund)
	s.Require().NoError(err)
	s.True(refunded)
	s.True(decimal.RequireFromString("1250.50").Equal(amount))

	payment, err := store.GetPaymentByOrder(ctx, s.db, paid.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusRefunded, payment.PaymentStatus)
	s.Equal("RFD-1", *payment.RefundTransactionID)

	_, refunded, err = store.RefundIfPaid(ctx, s.db, paid.ID, refund)
	s.Require().NoError(err)
	s.False(refunded)
}

func (s *StoreSuite) TestFetchPendingOutboxSkipsLocked() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Require().NoError(store.InsertOutbox(ctx, s.db, &models.OutboxEvent{
			EventID: uuid.NewString(),
			Topic:   "marketplace.orders",
			Key:     fmt.Sprintf("ORD-%d", i),
			Payload: []byte(`{}`),
		}))
	}

	first, err := s.db.BeginTx(ctx, nil)
	s.Require().NoError(err)
	defer first.Rollback()

	locked, err := store.FetchPendingOutbox(ctx, first, 2)
	s.Require().NoError(err)
	s.Len(locked, 2)

	second, err := s.db.BeginTx(ctx, nil)
	s.Require().NoError(err)
	rest, err := store.FetchPendingOutbox(ctx, second, 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal("ORD-2", rest[0].Key)
	s.Require().NoError(second.Rollback())

	s.Require().NoError(store.MarkOutboxSent(ctx, first, []int64{locked[0].ID, locked[1].ID}))
	s.Require().NoError(first.Commit())

	pending, err := store.CountPendingOutbox(ctx, s.db)
	s.Require().NoError(err)
	s.Equal(1, pending)
}

func (s *StoreSuite) TestListOrdersFilters() {
	ctx := context.Background()
	other := s.seed.Account(models.RoleCustomer)

	for i, c := range []dbtest.Account{s.customer, s.customer, other} {
		_, err := store.InsertOrder(ctx, s.db, &models.Order{
			OrderNumber:     fmt.Sprintf("ORD-LIST%d", i),
			CustomerID:      c.Profile.ID,
			Name:            "Buyer",
			Email:           c.User.Email,
			ContactNumber:   "01700000000",
			ShippingAddress: "Road 9",
			District:        "Sylhet",
			City:            "Sylhet",
			ZipCode:         "3100",
			ShippingMethod:  models.ShippingFree,
			OrderStatus:     models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusUnpaid,
			PaymentMethod:   models.PaymentMethodCashOnDelivery,
			Subtotal:        decimal.NewFromInt(100),
			TotalAmount:     decimal.NewFromInt(100),
		})
		s.Require().NoError(err)
	}

	page, err := store.ListOrders(ctx, s.db, store.OrderFilter{CustomerID: &s.customer.Profile.ID}, store.PageParams{Limit: 1})
	s.Require().NoError(err)
	s.Equal(2, page.Total)
	s.Equal(2, page.TotalPages)
	s.Len(page.Items, 1)

	page, err = store.ListOrders(ctx, s.db, store.OrderFilter{SearchTerm: "list2"}, store.PageParams{})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(other.Profile.ID, page.Items[0].CustomerID)
}
