package models

type (
	Role               string
	UserStatus         string
	ShopStatus         string
	ProductStatus      string
	OrderStatus        string
	PaymentStatus      string
	PaymentMethod      string
	ShippingMethod     string
	CancellationStatus string
	DiscountType       string
	CategoryType       string
)

const (
	RoleAdmin    Role = "ADMIN"
	RoleVendor   Role = "VENDOR"
	RoleCustomer Role = "CUSTOMER"
)

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusBlocked   UserStatus = "BLOCKED"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusDeleted   UserStatus = "DELETED"
)

const (
	ShopStatusActive    ShopStatus = "ACTIVE"
	ShopStatusInactive  ShopStatus = "INACTIVE"
	ShopStatusSuspended ShopStatus = "SUSPENDED"
	ShopStatusDeleted   ShopStatus = "DELETED"
)

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusDeleted  ProductStatus = "DELETED"
)

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
	PaymentStatusFailed        PaymentStatus = "FAILED"
)

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentMethodBkash          PaymentMethod = "BKASH"
	PaymentMethodNagad          PaymentMethod = "NAGAD"
	PaymentMethodRocket         PaymentMethod = "ROCKET"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGiftCard       PaymentMethod = "GIFT_CARD"
)

const (
	ShippingFree             ShippingMethod = "FREE_SHIPPING"
	ShippingSundarbanCourier ShippingMethod = "SUNDARBAN_COURIER"
	ShippingRedx             ShippingMethod = "REDX"
)

const (
	CancellationPending  CancellationStatus = "PENDING"
	CancellationApproved CancellationStatus = "APPROVED"
	CancellationRejected CancellationStatus = "REJECTED"
)

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

const (
	CategoryMain CategoryType = "MAIN"
	CategorySub  CategoryType = "SUB"
	CategoryItem CategoryType = "ITEM"
)

func oneOf[T ~string](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool { return oneOf(r, RoleAdmin, RoleVendor, RoleCustomer) }

func (s UserStatus) Valid() bool {
	return oneOf(s, UserStatusActive, UserStatusBlocked, UserStatusSuspended, UserStatusDeleted)
}

func (s ShopStatus) Valid() bool {
	return oneOf(s, ShopStatusActive, ShopStatusInactive, ShopStatusSuspended, ShopStatusDeleted)
}

func (s ProductStatus) Valid() bool {
	return oneOf(s, ProductStatusActive, ProductStatusInactive, ProductStatusDeleted)
}

func (s OrderStatus) Valid() bool {
	return oneOf(s, OrderStatusPending, OrderStatusProcessing, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded)
}

// Final reports whether an order in this status can no longer be cancelled.
func (s OrderStatus) Final() bool {
	return oneOf(s, OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded)
}

func (s PaymentStatus) Valid() bool {
	return oneOf(s, PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusRefunded, PaymentStatusFailed)
}

func (m PaymentMethod) Valid() bool {
	return oneOf(m, PaymentMethodCashOnDelivery, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket, PaymentMethodBankTransfer,
		PaymentMethodGiftCard)
}

func (m ShippingMethod) Valid() bool {
	return oneOf(m, ShippingFree, ShippingSundarbanCourier, ShippingRedx)
}

func (s CancellationStatus) Valid() bool {
	return oneOf(s, CancellationPending, CancellationApproved, CancellationRejected)
}

func (d DiscountType) Valid() bool { return oneOf(d, DiscountPercentage, DiscountFixedAmount) }

func (c CategoryType) Valid() bool { return oneOf(c, CategoryMain, CategorySub, CategoryItem) }
