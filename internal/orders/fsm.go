package orders

import (
	"time"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// CancellationWindow is how long after creation a customer may cancel. The
// boundary is inclusive: an order exactly this old is still cancellable.
const CancellationWindow = 5 * time.Minute

// transitions is the single source of truth for legal status moves. Status
// writes go through compare-and-swap updates keyed on the expected current
// status, so a stale actor loses the race instead of overwriting.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled
// by its owner, window permitting.
func Cancellable(status enums.OrderStatus) bool {
	return CanTransition(status, enums.OrderStatusCancelled)
}

// WithinCancellationWindow applies the inclusive window check against the
// order's creation time.
func WithinCancellationWindow(createdAt, now time.Time) bool {
	return !now.After(createdAt.Add(CancellationWindow))
}
