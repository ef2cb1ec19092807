package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries all data needed to place an order against a single
// pharmacy.
type CreateOrderInput struct {
	CustomerID string
	PharmacyID string
	Items      []OrderItemInput
}

// CreateOrderResult is returned after a successful order creation.
type CreateOrderResult struct {
	Order    *domain.Order
	Reserved []domain.StockChange
}

// UpdateStatusInput drives one state machine transition.
type UpdateStatusInput struct {
	OrderID string
	Status  domain.OrderStatus
	// RiderID is recorded when transitioning to picked_up.
	RiderID string
}

// CancelOrderInput cancels a non-terminal order.
type CancelOrderInput struct {
	OrderID string
	Reason  string
}

// StatusUpdateResult reports a completed transition. ReleaseIssues carries
// stock-release problems from a cancellation; they are informational and never
// block the cancellation itself.
type StatusUpdateResult struct {
	Order         *domain.Order
	ReleaseIssues []domain.StockIssue
}

// CheckoutResult reports the orders created from a cart, one per pharmacy
// represented in it.
type CheckoutResult struct {
	Orders   []domain.Order
	Reserved []domain.StockChange
}

// OrderService governs the order lifecycle: creation with stock reservation,
// legal status transitions and their side effects, and cancellation with
// compensating stock release.
type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	// Checkout places the caller's whole cart: lines are grouped per pharmacy
	// and one order is created per group; the cart is cleared only on success.
	Checkout(ctx context.Context, customerID string) (*CheckoutResult, error)

	Get(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*StatusUpdateResult, error)
	Cancel(ctx context.Context, in CancelOrderInput) (*StatusUpdateResult, error)

	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}
