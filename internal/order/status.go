package order

import "github.com/safar/marketplace/internal/models"

// validNext is the forward-only lifecycle enforced when strict transitions
// are enabled. CANCELLED is reached through an approved cancellation request,
// never through a status update.
var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPending:    {models.OrderStatusProcessing: true, models.OrderStatusConfirmed: true},
	models.OrderStatusProcessing: {models.OrderStatusConfirmed: true, models.OrderStatusShipped: true},
	models.OrderStatusConfirmed:  {models.OrderStatusShipped: true},
	models.OrderStatusShipped:    {models.OrderStatusDelivered: true, models.OrderStatusReturned: true},
	models.OrderStatusDelivered:  {models.OrderStatusReturned: true},
	models.OrderStatusReturned:   {models.OrderStatusRefunded: true},
	models.OrderStatusCancelled:  {},
	models.OrderStatusRefunded:   {},
}

// CanTransition reports whether an order may move from one status to
// another. Re-setting the current status is allowed so tracking details can
// be amended.
func CanTransition(from, to models.OrderStatus) bool {
	return from == to || validNext[from][to]
}
