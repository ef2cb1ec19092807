package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// StockRequest is one requested (product, quantity) line.
type StockRequest struct {
	ProductID string
	Quantity  int
}

// InventoryService is the transactional core tying order lifecycle to product
// stock. Reservation is two-phase: every line is verified before any line is
// applied, so a shortfall on a later line never leaves a partial reservation.
type InventoryService interface {
	// CheckStockAvailability classifies each line (not found, inactive, or a
	// stock comparison) without mutating anything.
	CheckStockAvailability(ctx context.Context, items []StockRequest) (domain.StockCheck, error)

	// ReserveStock decrements stock for all lines, or none. On an availability
	// failure it returns a *domain.StockError carrying the full issue list.
	ReserveStock(ctx context.Context, items []StockRequest) ([]domain.StockChange, error)

	// ReleaseStock is the compensating increment. It never re-validates
	// availability; lines whose product has vanished are reported as issues
	// without blocking the rest.
	ReleaseStock(ctx context.Context, items []StockRequest) ([]domain.StockChange, []domain.StockIssue, error)
}
