package handler

import (
	"time"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// --- Request types ---

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type createOrderRequest struct {
	PharmacyID string             `json:"pharmacy_id" validate:"required"`
	Items      []orderItemRequest `json:"items"       validate:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// --- Response types ---

type orderResponse struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"order_number"`
	CustomerID  string             `json:"customer_id"`
	PharmacyID  string             `json:"pharmacy_id"`
	RiderID     string             `json:"rider_id,omitempty"`
	Status      string             `json:"status"`
	Items       []domain.OrderItem `json:"items"`
	Total       float64            `json:"total"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// stockChangeResponse reports one applied inventory movement.
type stockChangeResponse struct {
	ProductID string `json:"product_id"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
	Quantity  int    `json:"quantity"`
}

type createOrderResponse struct {
	Order    orderResponse         `json:"order"`
	Reserved []stockChangeResponse `json:"reserved"`
}

type checkoutResponse struct {
	Orders   []orderResponse       `json:"orders"`
	Reserved []stockChangeResponse `json:"reserved"`
}

type statusUpdateResponse struct {
	Order         orderResponse `json:"order"`
	ReleaseIssues []string      `json:"release_issues,omitempty"`
}
