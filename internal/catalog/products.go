package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type VariantInput struct {
	Color  *string
	Images []string
	Sizes  []string
}

type ProductInput struct {
	Name             string
	Description      *string
	Price            decimal.Decimal
	StockQuantity    int
	DiscountPercent  decimal.Decimal
	Brand            string
	IsFlashSale      bool
	FlashSaleEndTime *time.Time
	ShippingMethod   models.ShippingMethod
	ShippingCharge   decimal.Decimal
	ItemCategoryID   int64
	Variants         []VariantInput
}

var hundred = decimal.NewFromInt(100)

func validateAmounts(price, discount, shipping *decimal.Decimal, stock *int) error {
	switch {
	case price != nil && price.IsNegative():
		return apperr.BadRequest("price cannot be negative")
	case discount != nil && (discount.IsNegative() || discount.GreaterThan(hundred)):
		return apperr.BadRequest("discountPercent must be between 0 and 100")
	case shipping != nil && shipping.IsNegative():
		return apperr.BadRequest("shippingCharge cannot be negative")
	case stock != nil && *stock < 0:
		return apperr.BadRequest("stockQuantity cannot be negative")
	}
	return nil
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.BadRequest("name is required")
	}
	if strings.TrimSpace(in.Brand) == "" {
		return apperr.BadRequest("brand is required")
	}
	if !in.ShippingMethod.Valid() {
		return apperr.BadRequest("Invalid shipping method")
	}
	return validateAmounts(&in.Price, &in.DiscountPercent, &in.ShippingCharge, &in.StockQuantity)
}

// CreateProduct lists a product in the calling vendor's active shop. The
// product and its initial variants are written together.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.CreateProduct, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if caller.VendorID == 0 {
		return nil, apperr.NotFound("Vendor profile not found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	shop, err := store.GetShopByVendor(ctx, s.db, caller.VendorID)
	if err != nil {
		if errors.Is(err, database.ErrShopNotFound) {
			return nil, apperr.BadRequest("You need to create a shop first")
		}
		return nil, err
	}
	if shop.Status != models.ShopStatusActive || shop.IsDeleted || shop.IsTemporaryDelete {
		return nil, apperr.BadRequest("Your shop is not active")
	}
	if err := s.requireItemCategory(ctx, in.ItemCategoryID); err != nil {
		return nil, err
	}

	var productID int64
	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		product, err := store.CreateProduct(ctx, tx, &models.Product{
			SKU:              GenerateSKU(in.Name, shop.Name, s.newRef()),
			Name:             in.Name,
			Description:      in.Description,
			Price:            in.Price,
			StockQuantity:    in.StockQuantity,
			DiscountPercent:  in.DiscountPercent,
			Brand:            in.Brand,
			IsFlashSale:      in.IsFlashSale,
			FlashSaleEndTime: in.FlashSaleEndTime,
			ShippingMethod:   in.ShippingMethod,
			ShippingCharge:   in.ShippingCharge,
			ShopID:           shop.ID,
			ItemCategoryID:   in.ItemCategoryID,
		})
		if err != nil {
			return err
		}
		for _, v := range in.Variants {
			if _, err := store.AddVariant(ctx, tx, &models.Variant{
				ProductID: product.ID,
				Color:     v.Color,
				Images:    v.Images,
				Sizes:     v.Sizes,
			}); err != nil {
				return err
			}
		}
		productID = product.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", productID), zap.Int64("shop_id", shop.ID))
	return store.GetProductWithVariants(ctx, s.db, productID)
}

func (s *Service) requireItemCategory(ctx context.Context, id int64) error {
	c, err := store.GetCategory(ctx, s.db, models.CategoryItem, id)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return apperr.NotFound("Item category not found")
		}
		return err
	}
	if c.IsDeleted {
		return apperr.NotFound("Item category not found")
	}
	return nil
}

// ownProduct checks that the caller is the vendor whose shop sells the
// product.
func (s *Service) ownProduct(ctx context.Context, productID int64) error {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return err
	}
	if err := policy.CanAttempt(caller, policy.ManageProduct); err != nil {
		return err
	}

	vendorID, err := store.ProductVendorID(ctx, s.db, productID)
	if err != nil {
		return err
	}
	return policy.CanPerform(caller, policy.ManageProduct, policy.Resource{VendorID: vendorID})
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, u store.ProductUpdate) (*models.Product, error) {
	if err := s.ownProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := validateAmounts(u.Price, u.DiscountPercent, u.ShippingCharge, u.StockQuantity); err != nil {
		return nil, err
	}
	if u.ShippingMethod != nil && !u.ShippingMethod.Valid() {
		return nil, apperr.BadRequest("Invalid shipping method")
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, apperr.BadRequest("Invalid product status")
	}
	if u.ItemCategoryID != nil {
		if err := s.requireItemCategory(ctx, *u.ItemCategoryID); err != nil {
			return nil, err
		}
	}

	if _, err := store.UpdateProduct(ctx, s.db, id, u); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, id)
}

// DeleteProduct marks the product DELETED. Order history keeps referencing
// it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.ownProduct(ctx, id); err != nil {
		return err
	}
	_, err := store.UpdateProduct(ctx, s.db, id, store.ProductUpdate{Status: ptr(models.ProductStatusDeleted)})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return store.GetProductWithVariants(ctx, s.db, id)
}

func (s *Service) ListProducts(ctx context.Context, f store.ProductFilter, p store.PageParams) (*store.OffsetPage[models.Product], error) {
	f.IncludeDeleted = false
	return store.ListProducts(ctx, s.db, f, p)
}

func (s *Service) ListShopProducts(ctx context.Context, shopID int64, f store.ProductFilter, p store.PageParams) (*store.OffsetPage[models.Product], error) {
	if _, err := store.GetShop(ctx, s.db, shopID); err != nil {
		return nil, err
	}
	f.ShopID = &shopID
	return s.ListProducts(ctx, f, p)
}

// ListMyProducts lists the calling vendor's products, deleted ones included
// when no status filter is given.
func (s *Service) ListMyProducts(ctx context.Context, f store.ProductFilter, p store.PageParams) (*store.OffsetPage[models.Product], error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ViewOwnShop, policy.Resource{})
	if err != nil {
		return nil, err
	}
	shop, err := store.GetShopByVendor(ctx, s.db, caller.VendorID)
	if err != nil {
		return nil, err
	}
	f.ShopID = &shop.ID
	f.IncludeDeleted = true
	return store.ListProducts(ctx, s.db, f, p)
}

func (s *Service) AddVariant(ctx context.Context, productID int64, in VariantInput) (*models.Product, error) {
	if err := s.ownProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := store.AddVariant(ctx, s.db, &models.Variant{
		ProductID: productID,
		Color:     in.Color,
		Images:    in.Images,
		Sizes:     in.Sizes,
	}); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, productID)
}

func (s *Service) UpdateVariant(ctx context.Context, productID, variantID int64, u store.VariantUpdate) (*models.Product, error) {
	if err := s.ownProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := store.UpdateVariant(ctx, s.db, productID, variantID, u); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, productID)
}

func (s *Service) DeleteVariant(ctx context.Context, productID, variantID int64) (*models.Product, error) {
	if err := s.ownProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := store.DeleteVariant(ctx, s.db, productID, variantID); err != nil {
		return nil, err
	}
	return store.GetProductWithVariants(ctx, s.db, productID)
}
