package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/catalog"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
)

type shopInput struct {
	Name          string
	Logo          *string
	Description   *string
	Email         string
	ContactNumber string
	Address       string
}

type shopUpdateInput struct {
	Name          *string
	Logo          *string
	Description   *string
	Email         *string
	ContactNumber *string
	Address       *string
}

type shopFilterInput struct {
	Status     *string
	SearchTerm *string
}

func (f *shopFilterInput) filter() store.ShopFilter {
	if f == nil {
		return store.ShopFilter{}
	}
	return store.ShopFilter{Status: enumPtr[models.ShopStatus](f.Status), SearchTerm: deref(f.SearchTerm)}
}

type idArgs struct {
	ID int32
}

func (r *Resolver) CreateShop(ctx context.Context, args struct{ Input shopInput }) (*response[*shopView], error) {
	in := args.Input
	shop, err := r.catalog.CreateShop(ctx, catalog.ShopInput{
		Name:          in.Name,
		Logo:          in.Logo,
		Description:   in.Description,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Address:       in.Address,
	})
	if err != nil {
		return nil, r.fail("createShop", err)
	}
	return created("Shop created successfully", newShopView(shop)), nil
}

func (r *Resolver) UpdateShop(ctx context.Context, args struct {
	ID    int32
	Input shopUpdateInput
}) (*response[*shopView], error) {
	in := args.Input
	shop, err := r.catalog.UpdateShop(ctx, int64(args.ID), store.ShopUpdate{
		Name:          in.Name,
		Logo:          in.Logo,
		Description:   in.Description,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Address:       in.Address,
	})
	if err != nil {
		return nil, r.fail("updateShop", err)
	}
	return ok("Shop updated successfully", newShopView(shop)), nil
}

// shopAction runs one of the single-id shop state changes.
func (r *Resolver) shopAction(ctx context.Context, op, message string, id int32, fn func(context.Context, int64) (*models.Shop, error)) (*response[*shopView], error) {
	shop, err := fn(ctx, int64(id))
	if err != nil {
		return nil, r.fail(op, err)
	}
	return ok(message, newShopView(shop)), nil
}

func (r *Resolver) TemporaryDeleteShop(ctx context.Context, args idArgs) (*response[*shopView], error) {
	return r.shopAction(ctx, "temporaryDeleteShop", "Shop temporarily deleted", args.ID, r.catalog.TemporaryDeleteShop)
}

func (r *Resolver) RestoreShop(ctx context.Context, args idArgs) (*response[*shopView], error) {
	return r.shopAction(ctx, "restoreShop", "Shop restored successfully", args.ID, r.catalog.RestoreShop)
}

func (r *Resolver) VerifyShop(ctx context.Context, args idArgs) (*response[*shopView], error) {
	return r.shopAction(ctx, "verifyShop", "Shop verified successfully", args.ID, r.catalog.VerifyShop)
}

func (r *Resolver) DeleteShop(ctx context.Context, args idArgs) (*response[*shopView], error) {
	return r.shopAction(ctx, "deleteShop", "Shop deleted successfully", args.ID, r.catalog.DeleteShop)
}

func (r *Resolver) Shop(ctx context.Context, args idArgs) (*response[*shopView], error) {
	return r.shopAction(ctx, "shop", "Shop retrieved successfully", args.ID, r.catalog.GetShop)
}

func (r *Resolver) MyShop(ctx context.Context) (*response[*shopView], error) {
	shop, err := r.catalog.MyShop(ctx)
	if err != nil {
		return nil, r.fail("myShop", err)
	}
	return ok("Shop retrieved successfully", newShopView(shop)), nil
}

func (r *Resolver) Shops(ctx context.Context, args struct {
	Filter *shopFilterInput
	Page   *pageInput
}) (*listResponse[*shopView], error) {
	page, err := r.catalog.ListShops(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("shops", err)
	}
	return list("Shops retrieved successfully", page, newShopView), nil
}

type categoryInput struct {
	Type        string
	ParentID    *int32
	Name        string
	Description *string
	Image       *string
}

type categoryUpdateInput struct {
	Name        *string
	Description *string
	Image       *string
}

type categoryFilterInput struct {
	Type       *string
	ParentID   *int32
	SearchTerm *string
}

func (f *categoryFilterInput) filter() store.CategoryFilter {
	var cf store.CategoryFilter
	if f == nil {
		return cf
	}
	if f.Type != nil {
		cf.Type = models.CategoryType(*f.Type)
	}
	if f.ParentID != nil {
		cf.ParentID = int64(*f.ParentID)
	}
	cf.SearchTerm = deref(f.SearchTerm)
	return cf
}

type categoryArgs struct {
	Type string
	ID   int32
}

func (r *Resolver) CreateCategory(ctx context.Context, args struct{ Input categoryInput }) (*response[*categoryView], error) {
	in := catalog.CategoryInput{
		Type:        models.CategoryType(args.Input.Type),
		Name:        args.Input.Name,
		Description: args.Input.Description,
		Image:       args.Input.Image,
	}
	if args.Input.ParentID != nil {
		in.ParentID = int64(*args.Input.ParentID)
	}

	c, err := r.catalog.CreateCategory(ctx, in)
	if err != nil {
		return nil, r.fail("createCategory", err)
	}
	return created("Category created successfully", newCategoryView(c)), nil
}

func (r *Resolver) UpdateCategory(ctx context.Context, args struct {
	Type  string
	ID    int32
	Input categoryUpdateInput
}) (*response[*categoryView], error) {
	c, err := r.catalog.UpdateCategory(ctx, models.CategoryType(args.Type), int64(args.ID), store.CategoryUpdate{
		Name:        args.Input.Name,
		Description: args.Input.Description,
		Image:       args.Input.Image,
	})
	if err != nil {
		return nil, r.fail("updateCategory", err)
	}
	return ok("Category updated successfully", newCategoryView(c)), nil
}

func (r *Resolver) DeleteCategory(ctx context.Context, args categoryArgs) (*response[*categoryView], error) {
	c, err := r.catalog.DeleteCategory(ctx, models.CategoryType(args.Type), int64(args.ID))
	if err != nil {
		return nil, r.fail("deleteCategory", err)
	}
	return ok("Category deleted successfully", newCategoryView(c)), nil
}

func (r *Resolver) Category(ctx context.Context, args categoryArgs) (*response[*categoryView], error) {
	c, err := r.catalog.GetCategory(ctx, models.CategoryType(args.Type), int64(args.ID))
	if err != nil {
		return nil, r.fail("category", err)
	}
	return ok("Category retrieved successfully", newCategoryView(c)), nil
}

func (r *Resolver) Categories(ctx context.Context, args struct {
	Filter *categoryFilterInput
	Page   *pageInput
}) (*listResponse[*categoryView], error) {
	page, err := r.catalog.ListCategories(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("categories", err)
	}
	return list("Categories retrieved successfully", page, newCategoryView), nil
}

type variantInput struct {
	Color  *string
	Images *[]string
	Sizes  *[]string
}

func (in variantInput) lists() (images, sizes []string) {
	if in.Images != nil {
		images = *in.Images
	}
	if in.Sizes != nil {
		sizes = *in.Sizes
	}
	return images, sizes
}

type productInput struct {
	Name             string
	Description      *string
	Price            Decimal
	StockQuantity    int32
	DiscountPercent  *Decimal
	Brand            string
	IsFlashSale      *bool
	FlashSaleEndTime *graphql.Time
	ShippingMethod   string
	ShippingCharge   *Decimal
	ItemCategoryID   int32
	Variants         *[]variantInput
}

type productUpdateInput struct {
	Name             *string
	Description      *string
	Price            *Decimal
	StockQuantity    *int32
	DiscountPercent  *Decimal
	Brand            *string
	IsFlashSale      *bool
	FlashSaleEndTime *graphql.Time
	ShippingMethod   *string
	ShippingCharge   *Decimal
	Status           *string
	ItemCategoryID   *int32
}

type productFilterInput struct {
	ShopID         *int32
	MinPrice       *Decimal
	MaxPrice       *Decimal
	Brands         *[]string
	ItemCategoryID *int32
	IsFlashSale    *bool
	Status         *string
	SearchTerm     *string
}

func (f *productFilterInput) filter() store.ProductFilter {
	if f == nil {
		return store.ProductFilter{}
	}
	pf := store.ProductFilter{
		ShopID:         toInt64(f.ShopID),
		MinPrice:       f.MinPrice.unwrap(),
		MaxPrice:       f.MaxPrice.unwrap(),
		ItemCategoryID: toInt64(f.ItemCategoryID),
		IsFlashSale:    f.IsFlashSale,
		Status:         enumPtr[models.ProductStatus](f.Status),
		SearchTerm:     deref(f.SearchTerm),
	}
	if f.Brands != nil {
		pf.Brands = *f.Brands
	}
	return pf
}

func timePtr(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func (r *Resolver) CreateProduct(ctx context.Context, args struct{ Input productInput }) (*response[*productView], error) {
	in := args.Input
	pi := catalog.ProductInput{
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price.Decimal,
		StockQuantity:    int(in.StockQuantity),
		Brand:            in.Brand,
		FlashSaleEndTime: timePtr(in.FlashSaleEndTime),
		ShippingMethod:   models.ShippingMethod(in.ShippingMethod),
		ItemCategoryID:   int64(in.ItemCategoryID),
	}
	if in.DiscountPercent != nil {
		pi.DiscountPercent = in.DiscountPercent.Decimal
	}
	if in.ShippingCharge != nil {
		pi.ShippingCharge = in.ShippingCharge.Decimal
	}
	if in.IsFlashSale != nil {
		pi.IsFlashSale = *in.IsFlashSale
	}
	if in.Variants != nil {
		for _, v := range *in.Variants {
			images, sizes := v.lists()
			pi.Variants = append(pi.Variants, catalog.VariantInput{Color: v.Color, Images: images, Sizes: sizes})
		}
	}

	p, err := r.catalog.CreateProduct(ctx, pi)
	if err != nil {
		return nil, r.fail("createProduct", err)
	}
	return created("Product created successfully", newProductView(p)), nil
}

func (r *Resolver) UpdateProduct(ctx context.Context, args struct {
	ID    int32
	Input productUpdateInput
}) (*response[*productView], error) {
	in := args.Input
	p, err := r.catalog.UpdateProduct(ctx, int64(args.ID), store.ProductUpdate{
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price.unwrap(),
		StockQuantity:    toInt(in.StockQuantity),
		DiscountPercent:  in.DiscountPercent.unwrap(),
		Brand:            in.Brand,
		IsFlashSale:      in.IsFlashSale,
		FlashSaleEndTime: timePtr(in.FlashSaleEndTime),
		ShippingMethod:   enumPtr[models.ShippingMethod](in.ShippingMethod),
		ShippingCharge:   in.ShippingCharge.unwrap(),
		Status:           enumPtr[models.ProductStatus](in.Status),
		ItemCategoryID:   toInt64(in.ItemCategoryID),
	})
	if err != nil {
		return nil, r.fail("updateProduct", err)
	}
	return ok("Product updated successfully", newProductView(p)), nil
}

func (r *Resolver) DeleteProduct(ctx context.Context, args idArgs) (*messageResponse, error) {
	if err := r.catalog.DeleteProduct(ctx, int64(args.ID)); err != nil {
		return nil, r.fail("deleteProduct", err)
	}
	return done("Product deleted successfully"), nil
}

func (r *Resolver) Product(ctx context.Context, args idArgs) (*response[*productView], error) {
	p, err := r.catalog.GetProduct(ctx, int64(args.ID))
	if err != nil {
		return nil, r.fail("product", err)
	}
	return ok("Product retrieved successfully", newProductView(p)), nil
}

func (r *Resolver) Products(ctx context.Context, args struct {
	Filter *productFilterInput
	Page   *pageInput
}) (*listResponse[*productView], error) {
	page, err := r.catalog.ListProducts(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("products", err)
	}
	return list("Products retrieved successfully", page, newProductView), nil
}

func (r *Resolver) ShopProducts(ctx context.Context, args struct {
	ShopID int32
	Filter *productFilterInput
	Page   *pageInput
}) (*listResponse[*productView], error) {
	page, err := r.catalog.ListShopProducts(ctx, int64(args.ShopID), args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("shopProducts", err)
	}
	return list("Products retrieved successfully", page, newProductView), nil
}

func (r *Resolver) MyProducts(ctx context.Context, args struct {
	Filter *productFilterInput
	Page   *pageInput
}) (*listResponse[*productView], error) {
	page, err := r.catalog.ListMyProducts(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("myProducts", err)
	}
	return list("Products retrieved successfully", page, newProductView), nil
}

func (r *Resolver) AddVariant(ctx context.Context, args struct {
	ProductID int32
	Input     variantInput
}) (*response[*productView], error) {
	images, sizes := args.Input.lists()
	p, err := r.catalog.AddVariant(ctx, int64(args.ProductID), catalog.VariantInput{
		Color:  args.Input.Color,
		Images: images,
		Sizes:  sizes,
	})
	if err != nil {
		return nil, r.fail("addVariant", err)
	}
	return created("Variant added successfully", newProductView(p)), nil
}

func (r *Resolver) UpdateVariant(ctx context.Context, args struct {
	ProductID int32
	VariantID int32
	Input     variantInput
}) (*response[*productView], error) {
	images, sizes := args.Input.lists()
	p, err := r.catalog.UpdateVariant(ctx, int64(args.ProductID), int64(args.VariantID), store.VariantUpdate{
		Color:  args.Input.Color,
		Images: images,
		Sizes:  sizes,
	})
	if err != nil {
		return nil, r.fail("updateVariant", err)
	}
	return ok("Variant updated successfully", newProductView(p)), nil
}

func (r *Resolver) DeleteVariant(ctx context.Context, args struct {
	ProductID int32
	VariantID int32
}) (*response[*productView], error) {
	p, err := r.catalog.DeleteVariant(ctx, int64(args.ProductID), int64(args.VariantID))
	if err != nil {
		return nil, r.fail("deleteVariant", err)
	}
	return ok("Variant deleted successfully", newProductView(p)), nil
}
