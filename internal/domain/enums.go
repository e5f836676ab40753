package domain

// OrderStatus is the canonical order lifecycle status. The observed legacy
// data carried ad hoc synonyms (Payment, Completed); those collapse onto this
// enum at the boundary and are never stored.
type OrderStatus string

const (
	// PENDING - checkout session created, payment not yet confirmed
	OrderStatusPending OrderStatus = "PENDING"
	// PAID - payment confirmed by the provider webhook
	OrderStatusPaid OrderStatus = "PAID"
	// PROCESSING - order accepted and being prepared
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// SHIPPED - order handed to the carrier
	OrderStatusShipped OrderStatus = "SHIPPED"
	// DELIVERED - order received by the customer
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// CANCELLED - order cancelled before delivery
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// transitions is the single source of truth for legal status changes.
// Cancellation is allowed from every non-terminal state.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  nil, // terminal
	OrderStatusCancelled:  nil, // terminal
}

// IsValid checks if the order status is a known canonical value
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}
