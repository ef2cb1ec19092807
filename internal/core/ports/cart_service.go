package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// CartService manages per-user carts. A user without a stored cart reads as an
// empty one; Clear is a true removal, not a soft delete.
type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	// UpdateItem sets the quantity of an existing line; quantity 0 removes it.
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}
