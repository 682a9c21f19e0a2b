package graph

import (
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/models"
)

// The view types below are what the schema resolves against. Field names
// match the GraphQL field names; IDs are narrowed to Int.

func optTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}

func optID(id *int64) *int32 {
	if id == nil {
		return nil
	}
	v := int32(*id)
	return &v
}

func optInt(n *int) *int32 {
	if n == nil {
		return nil
	}
	v := int32(*n)
	return &v
}

type userView struct {
	ID             int32
	Email          string
	Role           models.Role
	Status         models.UserStatus
	SuspendedFrom  *graphql.Time
	SuspendedUntil *graphql.Time
	CreatedAt      graphql.Time
	UpdatedAt      graphql.Time
	Profile        *profileView
}

type profileView struct {
	ID            int32
	UserID        int32
	Role          models.Role
	Name          string
	Email         string
	ContactNumber string
	Address       string
	ProfileImg    *string
	IsDeleted     bool
	CreatedAt     graphql.Time
	UpdatedAt     graphql.Time
}

func newUserView(u *models.User) *userView {
	v := &userView{
		ID:             int32(u.ID),
		Email:          u.Email,
		Role:           u.Role,
		Status:         u.Status,
		SuspendedFrom:  optTime(u.SuspendedFrom),
		SuspendedUntil: optTime(u.SuspendedUntil),
		CreatedAt:      graphql.Time{Time: u.CreatedAt},
		UpdatedAt:      graphql.Time{Time: u.UpdatedAt},
	}
	if p := u.Profile; p != nil {
		v.Profile = &profileView{
			ID:            int32(p.ID),
			UserID:        int32(p.UserID),
			Role:          p.Role,
			Name:          p.Name,
			Email:         p.Email,
			ContactNumber: p.ContactNumber,
			Address:       p.Address,
			ProfileImg:    p.ProfileImg,
			IsDeleted:     p.IsDeleted,
			CreatedAt:     graphql.Time{Time: p.CreatedAt},
			UpdatedAt:     graphql.Time{Time: p.UpdatedAt},
		}
	}
	return v
}

type sessionView struct {
	AccessToken string
	User        *userView
}

type shopView struct {
	ID                int32
	VendorID          int32
	Name              string
	Logo              *string
	Description       *string
	Email             string
	ContactNumber     string
	Address           string
	Status            models.ShopStatus
	IsVerified        bool
	IsDeleted         bool
	IsTemporaryDelete bool
	CreatedAt         graphql.Time
	UpdatedAt         graphql.Time
}

func newShopView(s *models.Shop) *shopView {
	return &shopView{
		ID:                int32(s.ID),
		VendorID:          int32(s.VendorID),
		Name:              s.Name,
		Logo:              s.Logo,
		Description:       s.Description,
		Email:             s.Email,
		ContactNumber:     s.ContactNumber,
		Address:           s.Address,
		Status:            s.Status,
		IsVerified:        s.IsVerified,
		IsDeleted:         s.IsDeleted,
		IsTemporaryDelete: s.IsTemporaryDelete,
		CreatedAt:         graphql.Time{Time: s.CreatedAt},
		UpdatedAt:         graphql.Time{Time: s.UpdatedAt},
	}
}

type categoryView struct {
	ID          int32
	Type        models.CategoryType
	ParentID    *int32
	Name        string
	Description *string
	Image       *string
	IsDeleted   bool
	CreatedAt   graphql.Time
	UpdatedAt   graphql.Time
	Children    []*categoryView
}

func newCategoryView(c *models.Category) *categoryView {
	v := &categoryView{
		ID:          int32(c.ID),
		Type:        c.Type,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		IsDeleted:   c.IsDeleted,
		CreatedAt:   graphql.Time{Time: c.CreatedAt},
		UpdatedAt:   graphql.Time{Time: c.UpdatedAt},
		Children:    make([]*categoryView, len(c.Children)),
	}
	if c.ParentID != 0 {
		v.ParentID = optID(&c.ParentID)
	}
	for i := range c.Children {
		v.Children[i] = newCategoryView(&c.Children[i])
	}
	return v
}

type productView struct {
	ID               int32
	SKU              string
	Name             string
	Description      *string
	Price            Decimal
	StockQuantity    int32
	DiscountPercent  Decimal
	Brand            string
	IsFlashSale      bool
	FlashSaleEndTime *graphql.Time
	ShippingMethod   models.ShippingMethod
	ShippingCharge   Decimal
	Status           models.ProductStatus
	ShopID           int32
	ItemCategoryID   int32
	CouponID         *int32
	CreatedAt        graphql.Time
	UpdatedAt        graphql.Time
	Variants         []*variantView
}

type variantView struct {
	ID        int32
	ProductID int32
	Color     *string
	Images    []string
	Sizes     []string
	CreatedAt graphql.Time
	UpdatedAt graphql.Time
}

func newProductView(p *models.Product) *productView {
	v := &productView{
		ID:               int32(p.ID),
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Price:            newDecimal(p.Price),
		StockQuantity:    int32(p.StockQuantity),
		DiscountPercent:  newDecimal(p.DiscountPercent),
		Brand:            p.Brand,
		IsFlashSale:      p.IsFlashSale,
		FlashSaleEndTime: optTime(p.FlashSaleEndTime),
		ShippingMethod:   p.ShippingMethod,
		ShippingCharge:   newDecimal(p.ShippingCharge),
		Status:           p.Status,
		ShopID:           int32(p.ShopID),
		ItemCategoryID:   int32(p.ItemCategoryID),
		CouponID:         optID(p.CouponID),
		CreatedAt:        graphql.Time{Time: p.CreatedAt},
		UpdatedAt:        graphql.Time{Time: p.UpdatedAt},
		Variants:         make([]*variantView, len(p.Variants)),
	}
	for i, vr := range p.Variants {
		images, sizes := vr.Images, vr.Sizes
		if images == nil {
			images = []string{}
		}
		if sizes == nil {
			sizes = []string{}
		}
		v.Variants[i] = &variantView{
			ID:        int32(vr.ID),
			ProductID: int32(vr.ProductID),
			Color:     vr.Color,
			Images:    images,
			Sizes:     sizes,
			CreatedAt: graphql.Time{Time: vr.CreatedAt},
			UpdatedAt: graphql.Time{Time: vr.UpdatedAt},
		}
	}
	return v
}

type couponView struct {
	ID                int32
	ShopID            int32
	Code              string
	Description       *string
	DiscountType      models.DiscountType
	DiscountValue     Decimal
	MinPurchaseAmount *Decimal
	MaxDiscountAmount *Decimal
	StartDate         graphql.Time
	EndDate           graphql.Time
	IsActive          bool
	UsageLimit        *int32
	UsageCount        int32
	CreatedAt         graphql.Time
	UpdatedAt         graphql.Time
}

func newCouponView(c *models.Coupon) *couponView {
	return &couponView{
		ID:                int32(c.ID),
		ShopID:            int32(c.ShopID),
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      c.DiscountType,
		DiscountValue:     newDecimal(c.DiscountValue),
		MinPurchaseAmount: nullDecimal(c.MinPurchaseAmount),
		MaxDiscountAmount: nullDecimal(c.MaxDiscountAmount),
		StartDate:         graphql.Time{Time: c.StartDate},
		EndDate:           graphql.Time{Time: c.EndDate},
		IsActive:          c.IsActive,
		UsageLimit:        optInt(c.UsageLimit),
		UsageCount:        int32(c.UsageCount),
		CreatedAt:         graphql.Time{Time: c.CreatedAt},
		UpdatedAt:         graphql.Time{Time: c.UpdatedAt},
	}
}

type orderView struct {
	ID                  int32
	OrderNumber         string
	CustomerID          int32
	Name                string
	Email               string
	ContactNumber       string
	ShippingAddress     string
	District            string
	City                string
	ZipCode             string
	BillingAddress      *string
	ShippingMethod      models.ShippingMethod
	ShippingCharge      Decimal
	OrderDate           graphql.Time
	DeliveryDate        *graphql.Time
	OrderStatus         models.OrderStatus
	PaymentStatus       models.PaymentStatus
	PaymentMethod       models.PaymentMethod
	Subtotal            Decimal
	DiscountAmount      Decimal
	TaxAmount           Decimal
	TotalAmount         Decimal
	TrackingNumber      *string
	Notes               *string
	DeliveryNotes       *string
	IsCancelled         bool
	CancelReason        *string
	CouponCode          *string
	CouponDiscount      *Decimal
	CreatedAt           graphql.Time
	UpdatedAt           graphql.Time
	Items               []*orderItemView
	Payment             *paymentView
	CancellationRequest *cancellationView
}

type orderItemView struct {
	ID        int32
	OrderID   int32
	ProductID int32
	VariantID *int32
	Quantity  int32
	UnitPrice Decimal
	Color     *string
	Size      *string
	Discount  Decimal
	Subtotal  Decimal
	CreatedAt graphql.Time
}

type paymentView struct {
	ID                  int32
	OrderID             int32
	PaymentMethod       models.PaymentMethod
	TransactionID       *string
	Amount              Decimal
	PaymentStatus       models.PaymentStatus
	PaymentDate         *graphql.Time
	RefundAmount        *Decimal
	RefundReason        *string
	RefundTransactionID *string
	RefundDate          *graphql.Time
	CreatedAt           graphql.Time
	UpdatedAt           graphql.Time
}

type cancellationView struct {
	ID             int32
	OrderID        int32
	CustomerID     int32
	Reason         string
	Details        *string
	Status         models.CancellationStatus
	VendorResponse *string
	RequestedAt    graphql.Time
	RespondedAt    *graphql.Time
}

func newOrderView(o *models.Order) *orderView {
	v := &orderView{
		ID:              int32(o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      int32(o.CustomerID),
		Name:            o.Name,
		Email:           o.Email,
		ContactNumber:   o.ContactNumber,
		ShippingAddress: o.ShippingAddress,
		District:        o.District,
		City:            o.City,
		ZipCode:         o.ZipCode,
		BillingAddress:  o.BillingAddress,
		ShippingMethod:  o.ShippingMethod,
		ShippingCharge:  newDecimal(o.ShippingCharge),
		OrderDate:       graphql.Time{Time: o.OrderDate},
		DeliveryDate:    optTime(o.DeliveryDate),
		OrderStatus:     o.OrderStatus,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        newDecimal(o.Subtotal),
		DiscountAmount:  newDecimal(o.DiscountAmount),
		TaxAmount:       newDecimal(o.TaxAmount),
		TotalAmount:     newDecimal(o.TotalAmount),
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		DeliveryNotes:   o.DeliveryNotes,
		IsCancelled:     o.IsCancelled,
		CancelReason:    o.CancelReason,
		CouponCode:      o.CouponCode,
		CouponDiscount:  nullDecimal(o.CouponDiscount),
		CreatedAt:       graphql.Time{Time: o.CreatedAt},
		UpdatedAt:       graphql.Time{Time: o.UpdatedAt},
		Items:           make([]*orderItemView, len(o.Items)),
	}

	for i, it := range o.Items {
		v.Items[i] = &orderItemView{
			ID:        int32(it.ID),
			OrderID:   int32(it.OrderID),
			ProductID: int32(it.ProductID),
			VariantID: optID(it.VariantID),
			Quantity:  int32(it.Quantity),
			UnitPrice: newDecimal(it.UnitPrice),
			Color:     it.Color,
			Size:      it.Size,
			Discount:  newDecimal(it.Discount),
			Subtotal:  newDecimal(it.Subtotal),
			CreatedAt: graphql.Time{Time: it.CreatedAt},
		}
	}

	if p := o.Payment; p != nil {
		v.Payment = &paymentView{
			ID:                  int32(p.ID),
			OrderID:             int32(p.OrderID),
			PaymentMethod:       p.PaymentMethod,
			TransactionID:       p.TransactionID,
			Amount:              newDecimal(p.Amount),
			PaymentStatus:       p.PaymentStatus,
			PaymentDate:         optTime(p.PaymentDate),
			RefundAmount:        nullDecimal(p.RefundAmount),
			RefundReason:        p.RefundReason,
			RefundTransactionID: p.RefundTransactionID,
			RefundDate:          optTime(p.RefundDate),
			CreatedAt:           graphql.Time{Time: p.CreatedAt},
			UpdatedAt:           graphql.Time{Time: p.UpdatedAt},
		}
	}

	if c := o.CancellationRequest; c != nil {
		v.CancellationRequest = &cancellationView{
			ID:             int32(c.ID),
			OrderID:        int32(c.OrderID),
			CustomerID:     int32(c.CustomerID),
			Reason:         c.Reason,
			Details:        c.Details,
			Status:         c.Status,
			VendorResponse: c.VendorResponse,
			RequestedAt:    graphql.Time{Time: c.RequestedAt},
			RespondedAt:    optTime(c.RespondedAt),
		}
	}

	return v
}
