// Package policy decides whether a caller may perform an action on a
// resource. Every service entry point asks once, before touching data.
package policy

import (
	"fmt"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/models"
)

// Caller is the authenticated user together with the id of the role profile
// that owns things on their behalf.
type Caller struct {
	UserID     int64
	Email      string
	Role       models.Role
	ProfileID  int64
	CustomerID int64
	VendorID   int64
}

func (c *Caller) Is(role models.Role) bool {
	return c != nil && c.Role == role
}

// Resource names the owners of the thing being acted on. Zero means the
// resource has no owner of that kind.
type Resource struct {
	CustomerID int64
	VendorID   int64
}

type Action string

const (
	CreateOrder         Action = "order.create"
	RequestCancellation Action = "order.cancellation.request"
	DecideCancellation  Action = "order.cancellation.decide"
	UpdateOrderStatus   Action = "order.status.update"
	ViewOrder           Action = "order.view"
	ListAllOrders       Action = "order.list.all"
	ListOwnOrders       Action = "order.list.own"
	ListShopOrders      Action = "order.list.shop"

	CreateShop     Action = "shop.create"
	ManageShop     Action = "shop.manage"
	AdministerShop Action = "shop.administer"
	ViewOwnShop    Action = "shop.view.own"

	ManageCategory Action = "category.manage"

	CreateProduct Action = "product.create"
	ManageProduct Action = "product.manage"

	CreateCoupon Action = "coupon.create"
	ManageCoupon Action = "coupon.manage"

	ViewSelf    Action = "user.view.self"
	ManageUsers Action = "user.manage"
)

type ownership int

const (
	noOwner ownership = iota
	customerOwns
	vendorOwns
	customerOrVendorOwns
)

type rule struct {
	roles     []models.Role
	owner     ownership
	roleMsg   string
	ownerMsg  string
	adminSkip bool
}

var (
	admin    = []models.Role{models.RoleAdmin}
	vendor   = []models.Role{models.RoleVendor}
	customer = []models.Role{models.RoleCustomer}
	staff    = []models.Role{models.RoleAdmin, models.RoleVendor}
	anyone   = []models.Role{models.RoleAdmin, models.RoleVendor, models.RoleCustomer}
)

var rules = map[Action]rule{
	CreateOrder: {
		roles:   customer,
		roleMsg: "Only customers can place orders",
	},
	RequestCancellation: {
		roles:    customer,
		owner:    customerOwns,
		roleMsg:  "Only customers can request order cancellation",
		ownerMsg: "You can only request cancellation for your own orders",
	},
	DecideCancellation: {
		roles:     staff,
		owner:     vendorOwns,
		adminSkip: true,
		roleMsg:   "Only vendors or admins can respond to cancellation requests",
		ownerMsg:  "You don't have permission to process this cancellation request",
	},
	UpdateOrderStatus: {
		roles:     staff,
		owner:     vendorOwns,
		adminSkip: true,
		roleMsg:   "Only vendors or admins can update order status",
		ownerMsg:  "You don't have permission to update this order",
	},
	ViewOrder: {
		roles:     anyone,
		owner:     customerOrVendorOwns,
		adminSkip: true,
		ownerMsg:  "You don't have permission to view this order",
	},
	ListAllOrders: {
		roles:   admin,
		roleMsg: "Only admins can view all orders",
	},
	ListOwnOrders: {
		roles:   customer,
		roleMsg: "Only customers have personal orders",
	},
	ListShopOrders: {
		roles:   vendor,
		roleMsg: "Only vendors can view shop orders",
	},
	CreateShop: {
		roles:   vendor,
		roleMsg: "Only vendors can create a shop",
	},
	ManageShop: {
		roles:     staff,
		owner:     vendorOwns,
		adminSkip: true,
		roleMsg:   "Only vendors or admins can manage shops",
		ownerMsg:  "You can only manage your own shop",
	},
	AdministerShop: {
		roles:   admin,
		roleMsg: "Only admins can perform this shop action",
	},
	ViewOwnShop: {
		roles:   vendor,
		roleMsg: "Only vendors have a shop",
	},
	ManageCategory: {
		roles:   admin,
		roleMsg: "Only admins can manage categories",
	},
	CreateProduct: {
		roles:   vendor,
		roleMsg: "Only vendors can create products",
	},
	ManageProduct: {
		roles:    vendor,
		owner:    vendorOwns,
		roleMsg:  "Only vendors can manage products",
		ownerMsg: "You can only manage products of your own shop",
	},
	CreateCoupon: {
		roles:   vendor,
		roleMsg: "Only vendors can create coupons",
	},
	ManageCoupon: {
		roles:    vendor,
		owner:    vendorOwns,
		roleMsg:  "Only vendors can manage coupons",
		ownerMsg: "You can only manage coupons of your own shop",
	},
	ViewSelf: {
		roles: anyone,
	},
	ManageUsers: {
		roles:   admin,
		roleMsg: "Only admins can manage users",
	},
}

// CanAttempt checks only the role part of action's rule. Call it before
// loading the resource so a wrong role never learns whether the resource
// exists.
func CanAttempt(c *Caller, action Action) error {
	_, err := roleRule(c, action)
	return err
}

func roleRule(c *Caller, action Action) (rule, error) {
	if c == nil {
		return rule{}, apperr.Unauthorized("You are not authorized")
	}

	rl, ok := rules[action]
	if !ok {
		return rule{}, apperr.Forbidden(fmt.Sprintf("Unknown action %q", action))
	}

	if !hasRole(rl.roles, c.Role) {
		return rule{}, apperr.Forbidden(orDefault(rl.roleMsg, "You are not allowed to perform this action"))
	}
	return rl, nil
}

// CanPerform returns nil when c may perform action on r, UNAUTHORIZED when
// there is no caller and FORBIDDEN otherwise.
func CanPerform(c *Caller, action Action, r Resource) error {
	rl, err := roleRule(c, action)
	if err != nil {
		return err
	}

	if rl.adminSkip && c.Role == models.RoleAdmin {
		return nil
	}

	denied := apperr.Forbidden(orDefault(rl.ownerMsg, "You do not own this resource"))
	switch rl.owner {
	case customerOwns:
		if !owns(c.CustomerID, r.CustomerID) {
			return denied
		}
	case vendorOwns:
		if !owns(c.VendorID, r.VendorID) {
			return denied
		}
	case customerOrVendorOwns:
		if !owns(c.CustomerID, r.CustomerID) && !owns(c.VendorID, r.VendorID) {
			return denied
		}
	}

	return nil
}

func owns(callerID, ownerID int64) bool {
	return callerID != 0 && callerID == ownerID
}

func hasRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
