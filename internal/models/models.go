package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	Status         UserStatus `json:"status"`
	SuspendedFrom  *time.Time `json:"suspendedFrom,omitempty"`
	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Profile        *Profile   `json:"profile,omitempty"`
}

// Profile is the role-specific record (admin, vendor or customer) attached
// to a user.
type Profile struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Role          Role      `json:"role"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber"`
	Address       string    `json:"address"`
	ProfileImg    *string   `json:"profileImg,omitempty"`
	IsDeleted     bool      `json:"isDeleted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Shop struct {
	ID                int64      `json:"id"`
	VendorID          int64      `json:"vendorId"`
	Name              string     `json:"name"`
	Logo              *string    `json:"logo,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Email             string     `json:"email"`
	ContactNumber     string     `json:"contactNumber"`
	Address           string     `json:"address"`
	Status            ShopStatus `json:"status"`
	IsVerified        bool       `json:"isVerified"`
	IsDeleted         bool       `json:"isDeleted"`
	IsTemporaryDelete bool       `json:"isTemporaryDelete"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Category is a node of the MAIN > SUB > ITEM hierarchy. ParentID is zero for
// MAIN categories.
type Category struct {
	ID          int64        `json:"id"`
	Type        CategoryType `json:"type"`
	ParentID    int64        `json:"parentId,omitempty"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Image       *string      `json:"image,omitempty"`
	IsDeleted   bool         `json:"isDeleted"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Children    []Category   `json:"children,omitempty"`
}

type Product struct {
	ID               int64           `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	StockQuantity    int             `json:"stockQuantity"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	Brand            string          `json:"brand"`
	IsFlashSale      bool            `json:"isFlashSale"`
	FlashSaleEndTime *time.Time      `json:"flashSaleEndTime,omitempty"`
	ShippingMethod   ShippingMethod  `json:"shippingMethod"`
	ShippingCharge   decimal.Decimal `json:"shippingCharge"`
	Status           ProductStatus   `json:"status"`
	ShopID           int64           `json:"shopId"`
	ItemCategoryID   int64           `json:"itemCategoryId"`
	CouponID         *int64          `json:"couponId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Variants         []Variant       `json:"variants,omitempty"`
}

type Variant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Color     *string   `json:"color,omitempty"`
	Images    []string  `json:"images"`
	Sizes     []string  `json:"sizes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasSize reports whether size is one of the variant's sizes.
func (v *Variant) HasSize(size string) bool {
	for _, s := range v.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

type Coupon struct {
	ID                int64               `json:"id"`
	ShopID            int64               `json:"shopId"`
	Code              string              `json:"code"`
	Description       *string             `json:"description,omitempty"`
	DiscountType      DiscountType        `json:"discountType"`
	DiscountValue     decimal.Decimal     `json:"discountValue"`
	MinPurchaseAmount decimal.NullDecimal `json:"minPurchaseAmount"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
	StartDate         time.Time           `json:"startDate"`
	EndDate           time.Time           `json:"endDate"`
	IsActive          bool                `json:"isActive"`
	UsageLimit        *int                `json:"usageLimit,omitempty"`
	UsageCount        int                 `json:"usageCount"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type Order struct {
	ID                  int64                `json:"id"`
	OrderNumber         string               `json:"orderNumber"`
	CustomerID          int64                `json:"customerId"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	ContactNumber       string               `json:"contactNumber"`
	ShippingAddress     string               `json:"shippingAddress"`
	District            string               `json:"district"`
	City                string               `json:"city"`
	ZipCode             string               `json:"zipCode"`
	BillingAddress      *string              `json:"billingAddress,omitempty"`
	ShippingMethod      ShippingMethod       `json:"shippingMethod"`
	ShippingCharge      decimal.Decimal      `json:"shippingCharge"`
	OrderDate           time.Time            `json:"orderDate"`
	DeliveryDate        *time.Time           `json:"deliveryDate,omitempty"`
	OrderStatus         OrderStatus          `json:"orderStatus"`
	PaymentStatus       PaymentStatus        `json:"paymentStatus"`
	PaymentMethod       PaymentMethod        `json:"paymentMethod"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	DiscountAmount      decimal.Decimal      `json:"discountAmount"`
	TaxAmount           decimal.Decimal      `json:"taxAmount"`
	TotalAmount         decimal.Decimal      `json:"totalAmount"`
	TrackingNumber      *string              `json:"trackingNumber,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	DeliveryNotes       *string              `json:"deliveryNotes,omitempty"`
	IsDeleted           bool                 `json:"isDeleted"`
	IsCancelled         bool                 `json:"isCancelled"`
	CancelReason        *string              `json:"cancelReason,omitempty"`
	CouponCode          *string              `json:"couponCode,omitempty"`
	CouponDiscount      decimal.NullDecimal  `json:"couponDiscount"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	Items               []OrderItem          `json:"items"`
	Payment             *Payment             `json:"payment,omitempty"`
	CancellationRequest *CancellationRequest `json:"cancellationRequest,omitempty"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	VariantID *int64          `json:"variantId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Color     *string         `json:"color,omitempty"`
	Size      *string         `json:"size,omitempty"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Payment struct {
	ID                  int64               `json:"id"`
	OrderID             int64               `json:"orderId"`
	PaymentMethod       PaymentMethod       `json:"paymentMethod"`
	TransactionID       *string             `json:"transactionId,omitempty"`
	Amount              decimal.Decimal     `json:"amount"`
	PaymentStatus       PaymentStatus       `json:"paymentStatus"`
	PaymentDate         *time.Time          `json:"paymentDate,omitempty"`
	RefundAmount        decimal.NullDecimal `json:"refundAmount"`
	RefundReason        *string             `json:"refundReason,omitempty"`
	RefundTransactionID *string             `json:"refundTransactionId,omitempty"`
	RefundDate          *time.Time          `json:"refundDate,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

type CancellationRequest struct {
	ID             int64              `json:"id"`
	OrderID        int64              `json:"orderId"`
	CustomerID     int64              `json:"customerId"`
	Reason         string             `json:"reason"`
	Details        *string            `json:"details,omitempty"`
	Status         CancellationStatus `json:"status"`
	VendorResponse *string            `json:"vendorResponse,omitempty"`
	RequestedAt    time.Time          `json:"requestedAt"`
	RespondedAt    *time.Time         `json:"respondedAt,omitempty"`
}

type OutboxEvent struct {
	ID        int64      `json:"id"`
	EventID   string     `json:"eventId"`
	Topic     string     `json:"topic"`
	Key       string     `json:"key"`
	Payload   []byte     `json:"payload"`
	CreatedAt time.Time  `json:"createdAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}
