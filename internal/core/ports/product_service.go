package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// CreateProductInput carries all data needed to list a new catalog item.
type CreateProductInput struct {
	PharmacyID  string
	Name        string
	Description string
	Category    string
	SKU         string
	Price       float64
	Stock       int
}

// UpdateProductPatch is a merge-style patch: nil fields are left untouched.
type UpdateProductPatch struct {
	Name        *string
	Description *string
	Category    *string
	SKU         *string
	Price       *float64
	Stock       *int
	IsActive    *bool
}

// ProductService defines catalog operations. Retrieval distinguishes the
// customer-facing active-only view from the admin view that includes
// soft-deleted items.
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	// Get resolves a product. With includeInactive=false a soft-deleted product
	// reads as not found.
	Get(ctx context.Context, id string, includeInactive bool) (*domain.Product, error)
	Update(ctx context.Context, id string, patch UpdateProductPatch) (*domain.Product, error)
	// Delete soft-deletes: the product stays on record with IsActive=false.
	Delete(ctx context.Context, id string) error

	ListActive(ctx context.Context) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListByPharmacy(ctx context.Context, pharmacyID string, includeInactive bool) ([]domain.Product, error)

	// AdjustStock applies a direct delta to a product's stock for pharmacy-side
	// corrections. The result is clamped at zero; it never goes negative.
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}
