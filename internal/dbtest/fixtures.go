package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Account is a seeded user with its role profile.
type Account struct {
	User    *models.User
	Profile *models.Profile
}

// Context returns ctx carrying the account's identity, as the auth
// middleware would.
func (a Account) Context(ctx context.Context) context.Context {
	return auth.WithClaims(ctx, &auth.Claims{UserID: a.User.ID, Email: a.User.Email, Role: a.User.Role})
}

// Seed builds fixtures on one database. Names stay unique across calls.
type Seed struct {
	t  testing.TB
	db *sql.DB
	n  int
}

func NewSeed(t testing.TB, db *sql.DB) *Seed {
	return &Seed{t: t, db: db}
}

func (s *Seed) next() int {
	s.n++
	return s.n
}

// Account creates an ACTIVE user with role and its profile. The password is
// "secret123".
func (s *Seed) Account(role models.Role) Account {
	s.t.Helper()
	ctx := context.Background()
	n := s.next()
	email := fmt.Sprintf("%s%d@example.com", role, n)

	hash, err := auth.HashPassword("secret123")
	require.NoError(s.t, err)

	user, err := store.CreateUser(ctx, s.db, email, hash, role)
	require.NoError(s.t, err)

	profile, err := store.CreateProfile(ctx, s.db, &models.Profile{
		UserID:        user.ID,
		Role:          role,
		Name:          fmt.Sprintf("%s %d", role, n),
		Email:         email,
		ContactNumber: "01700000000",
		Address:       "Dhaka",
	})
	require.NoError(s.t, err)

	user.Profile = profile
	return Account{User: user, Profile: profile}
}

// Shop creates an ACTIVE shop for vendor.
func (s *Seed) Shop(vendor Account) *models.Shop {
	s.t.Helper()
	n := s.next()
	shop, err := store.CreateShop(context.Background(), s.db, &models.Shop{
		VendorID:      vendor.Profile.ID,
		Name:          fmt.Sprintf("Shop %d", n),
		Email:         fmt.Sprintf("shop%d@example.com", n),
		ContactNumber: "01800000000",
		Address:       "Chattogram",
	})
	require.NoError(s.t, err)
	return shop
}

// ItemCategory creates a MAIN > SUB > ITEM chain and returns the ITEM.
func (s *Seed) ItemCategory() *models.Category {
	s.t.Helper()
	ctx := context.Background()
	n := s.next()

	main, err := store.CreateCategory(ctx, s.db, &models.Category{Type: models.CategoryMain, Name: fmt.Sprintf("Main %d", n)})
	require.NoError(s.t, err)
	sub, err := store.CreateCategory(ctx, s.db, &models.Category{Type: models.CategorySub, ParentID: main.ID, Name: fmt.Sprintf("Sub %d", n)})
	require.NoError(s.t, err)
	item, err := store.CreateCategory(ctx, s.db, &models.Category{Type: models.CategoryItem, ParentID: sub.ID, Name: fmt.Sprintf("Item %d", n)})
	require.NoError(s.t, err)
	return item
}

// Product creates an ACTIVE product priced at price with stock units.
func (s *Seed) Product(shop *models.Shop, category *models.Category, price string, stock int) *models.Product {
	s.t.Helper()
	n := s.next()
	product, err := store.CreateProduct(context.Background(), s.db, &models.Product{
		SKU:            fmt.Sprintf("SKU-%06d", n),
		Name:           fmt.Sprintf("Product %d", n),
		Price:          decimal.RequireFromString(price),
		StockQuantity:  stock,
		Brand:          "Acme",
		ShippingMethod: models.ShippingRedx,
		ShippingCharge: decimal.NewFromInt(60),
		ShopID:         shop.ID,
		ItemCategoryID: category.ID,
	})
	require.NoError(s.t, err)
	return product
}

// Coupon creates an active FIXED_AMOUNT coupon valid around now.
func (s *Seed) Coupon(shop *models.Shop, value string, limit *int) *models.Coupon {
	s.t.Helper()
	n := s.next()
	now := time.Now()
	coupon, err := store.CreateCoupon(context.Background(), s.db, &models.Coupon{
		ShopID:        shop.ID,
		Code:          fmt.Sprintf("SAVE%d", n),
		DiscountType:  models.DiscountFixedAmount,
		DiscountValue: decimal.RequireFromString(value),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		UsageLimit:    limit,
	})
	require.NoError(s.t, err)
	return coupon
}
