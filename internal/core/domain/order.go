package domain

import (
	"fmt"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusPickedUp       OrderStatus = "picked_up"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions. Cancellation
// is reachable from every non-terminal state; delivered and cancelled are
// terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusAccepted, StatusCancelled},
	StatusAccepted:       {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady, StatusCancelled},
	StatusReady:          {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

// ParseOrderStatus converts a raw string into an OrderStatus, rejecting
// anything outside the enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady,
		StatusPickedUp, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderItem is a single line of an order. Price is the unit price captured at
// order-creation time.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is the core aggregate tying a customer, a pharmacy and (eventually) a
// rider to a set of reserved product lines.
type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  string      `json:"customer_id"`
	PharmacyID  string      `json:"pharmacy_id"`
	RiderID     string      `json:"rider_id,omitempty"`
	Items       []OrderItem `json:"items"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`

	// StockReserved is true iff a successful reservation has occurred and has
	// not yet been released.
	StockReserved bool `json:"stock_reserved"`
	StockReleased bool `json:"stock_released,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	PreparingAt *time.Time `json:"preparing_at,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
