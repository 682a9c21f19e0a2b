package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.sku, p.name, p.description, p.price, p.stock_quantity, p.discount_percent,
	p.brand, p.is_flash_sale, p.flash_sale_end_time, p.shipping_method, p.shipping_charge, p.status,
	p.shop_id, p.item_category_id, p.coupon_id, p.created_at, p.updated_at`

var productSortable = map[string]string{
	"createdAt":     "p.created_at",
	"updatedAt":     "p.updated_at",
	"price":         "p.price",
	"name":          "p.name",
	"stockQuantity": "p.stock_quantity",
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.DiscountPercent,
		&p.Brand,
		&p.IsFlashSale,
		&p.FlashSaleEndTime,
		&p.ShippingMethod,
		&p.ShippingCharge,
		&p.Status,
		&p.ShopID,
		&p.ItemCategoryID,
		&p.CouponID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func queryProduct(ctx context.Context, q database.Querier, op, query string, args ...any) (*models.Product, error) {
	product, err := scanProduct(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		if database.IsForeignKeyViolation(err) {
			return nil, apperr.BadRequest("Referenced shop, category or coupon does not exist")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &product, nil
}

func CreateProduct(ctx context.Context, q database.Querier, p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products AS p (sku, name, description, price, stock_quantity, discount_percent, brand,
			is_flash_sale, flash_sale_end_time, shipping_method, shipping_charge, status,
			shop_id, item_category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + productColumns

	status := p.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	created, err := queryProduct(ctx, q, "create product", query,
		p.SKU, p.Name, p.Description, p.Price, p.StockQuantity, p.DiscountPercent, p.Brand,
		p.IsFlashSale, p.FlashSaleEndTime, p.ShippingMethod, p.ShippingCharge, status,
		p.ShopID, p.ItemCategoryID)
	if err != nil && database.IsUniqueViolation(err) {
		return nil, apperr.Conflict("Product SKU already exists")
	}
	return created, err
}

func GetProduct(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	return queryProduct(ctx, q, "get product", `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

// GetProductWithVariants loads the product and its variants.
func GetProductWithVariants(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	product, err := GetProduct(ctx, q, id)
	if err != nil {
		return nil, err
	}

	variants, err := ListVariants(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	product.Variants = variants[id]

	return product, nil
}

type ProductUpdate struct {
	Name             *string
	Description      *string
	Price            *decimal.Decimal
	StockQuantity    *int
	DiscountPercent  *decimal.Decimal
	Brand            *string
	IsFlashSale      *bool
	FlashSaleEndTime *time.Time
	ShippingMethod   *models.ShippingMethod
	ShippingCharge   *decimal.Decimal
	Status           *models.ProductStatus
	ItemCategoryID   *int64
}

func UpdateProduct(ctx context.Context, q database.Querier, id int64, u ProductUpdate) (*models.Product, error) {
	query := `
		UPDATE products p
		SET name = COALESCE($2, p.name),
		    description = COALESCE($3, p.description),
		    price = COALESCE($4, p.price),
		    stock_quantity = COALESCE($5, p.stock_quantity),
		    discount_percent = COALESCE($6, p.discount_percent),
		    brand = COALESCE($7, p.brand),
		    is_flash_sale = COALESCE($8, p.is_flash_sale),
		    flash_sale_end_time = COALESCE($9, p.flash_sale_end_time),
		    shipping_method = COALESCE($10, p.shipping_method),
		    shipping_charge = COALESCE($11, p.shipping_charge),
		    status = COALESCE($12, p.status),
		    item_category_id = COALESCE($13, p.item_category_id),
		    updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + productColumns

	return queryProduct(ctx, q, "update product", query,
		id, u.Name, u.Description, u.Price, u.StockQuantity, u.DiscountPercent, u.Brand,
		u.IsFlashSale, u.FlashSaleEndTime, u.ShippingMethod, u.ShippingCharge, u.Status, u.ItemCategoryID)
}

// SetProductCoupon assigns couponID to the product, or clears it when nil.
func SetProductCoupon(ctx context.Context, q database.Querier, productID int64, couponID *int64) (*models.Product, error) {
	query := `
		UPDATE products p SET coupon_id = $2, updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + productColumns
	return queryProduct(ctx, q, "set product coupon", query, productID, couponID)
}

func CountProductsWithCoupon(ctx context.Context, q database.Querier, couponID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE coupon_id = $1`, couponID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products with coupon: %w", err)
	}
	return n, nil
}

// DecrementStock removes qty units in one conditional statement. The row
// only changes while enough stock remains and the product is ACTIVE, so
// concurrent orders can never drive stock below zero.
func DecrementStock(ctx context.Context, q database.Querier, productID int64, qty int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND status = $3
		   AND stock_quantity >= $1`,
		qty, productID, models.ProductStatusActive)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	return expectOne(result, database.ErrInsufficientStock)
}

func IncrementStock(ctx context.Context, q database.Querier, productID int64, qty int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity + $1,
		     updated_at = NOW()
		 WHERE id = $2`,
		qty, productID)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	return expectOne(result, database.ErrProductNotFound)
}

// ProductVendorID resolves the vendor owning the product's shop.
func ProductVendorID(ctx context.Context, q database.Querier, productID int64) (int64, error) {
	var vendorID int64
	err := q.QueryRowContext(ctx,
		`SELECT s.vendor_id FROM products p JOIN shops s ON s.id = p.shop_id WHERE p.id = $1`,
		productID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrProductNotFound
		}
		return 0, fmt.Errorf("get product vendor: %w", err)
	}
	return vendorID, nil
}

type ProductFilter struct {
	ShopID         *int64
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	Brands         []string
	ItemCategoryID *int64
	IsFlashSale    *bool
	Status         *models.ProductStatus
	SearchTerm     string
	// IncludeDeleted lists DELETED products when no Status is given.
	IncludeDeleted bool
}

func ListProducts(ctx context.Context, db *sql.DB, pf ProductFilter, params PageParams) (*OffsetPage[models.Product], error) {
	var f filter
	if pf.ShopID != nil {
		f.eq("p.shop_id", *pf.ShopID)
	}
	if pf.MinPrice != nil {
		f.where("p.price >= " + f.arg(*pf.MinPrice))
	}
	if pf.MaxPrice != nil {
		f.where("p.price <= " + f.arg(*pf.MaxPrice))
	}
	if len(pf.Brands) > 0 {
		f.where("p.brand = ANY(" + f.arg(pq.Array(pf.Brands)) + ")")
	}
	if pf.ItemCategoryID != nil {
		f.eq("p.item_category_id", *pf.ItemCategoryID)
	}
	if pf.IsFlashSale != nil {
		f.eq("p.is_flash_sale", *pf.IsFlashSale)
	}
	switch {
	case pf.Status != nil:
		f.eq("p.status", *pf.Status)
	case !pf.IncludeDeleted:
		f.where("p.status <> " + f.arg(models.ProductStatusDeleted))
	}
	f.search(pf.SearchTerm, "p.sku", "p.name", "p.description", "p.brand")

	page, err := listAndCount(ctx, db, productColumns, "products p", &f, Paginate(params, productSortable), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ids := make([]int64, len(page.Items))
	for i, p := range page.Items {
		ids[i] = p.ID
	}
	variants, err := ListVariants(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Variants = variants[page.Items[i].ID]
	}

	return page, nil
}
