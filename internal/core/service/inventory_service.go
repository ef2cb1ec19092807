package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/api/metrics"
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// InventoryService is the inventory ledger. Reservation follows a strict
// verify-all-then-apply-all protocol: no decrement is written until every
// requested line has been checked against active stock, so a shortfall on the
// last line leaves the first untouched.
type InventoryService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewInventoryService(st *store.Store, log zerolog.Logger) *InventoryService {
	return &InventoryService{store: st, log: log}
}

// CheckStockAvailability classifies each requested line without mutating
// anything. Inactive products are reported distinctly from shortfalls: an
// inactive product is a terminal error, not a quantity problem.
func (s *InventoryService) CheckStockAvailability(ctx context.Context, items []ports.StockRequest) (domain.StockCheck, error) {
	var check domain.StockCheck
	err := s.store.View(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		check = checkAvailability(products, items)
		return nil
	})
	return check, err
}

// ReserveStock decrements stock for all lines in one pass, persisted once, or
// does nothing at all.
func (s *InventoryService) ReserveStock(ctx context.Context, items []ports.StockRequest) ([]domain.StockChange, error) {
	var changes []domain.StockChange
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		changes, err = s.reserveTx(tx, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// ReleaseStock applies the compensating increments. A product that can no
// longer be found is reported as an issue; the remaining lines are still
// released.
func (s *InventoryService) ReleaseStock(ctx context.Context, items []ports.StockRequest) ([]domain.StockChange, []domain.StockIssue, error) {
	var (
		changes []domain.StockChange
		issues  []domain.StockIssue
	)
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		changes, issues, err = s.releaseTx(tx, items)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return changes, issues, nil
}

// reserveTx runs the two-phase reservation inside an already-open mutation.
// The order service calls this so that reservation and order persistence share
// one critical section.
func (s *InventoryService) reserveTx(tx *store.Tx, items []ports.StockRequest) ([]domain.StockChange, error) {
	products, err := tx.Products()
	if err != nil {
		return nil, err
	}

	// Phase 1: verify every line. Abort with the full issue list on any failure.
	check := checkAvailability(products, items)
	if !check.Available {
		metrics.StockReservationsTotal.WithLabelValues("rejected").Inc()
		return nil, &domain.StockError{Issues: check.Issues}
	}

	// Phase 2: apply all decrements in one pass and persist once.
	byID := make(map[string]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}
	changes := make([]domain.StockChange, 0, len(items))
	for _, it := range items {
		p := &products[byID[it.ProductID]]
		old := p.Stock
		p.Stock = old - it.Quantity
		changes = append(changes, domain.StockChange{
			ProductID: p.ID,
			OldStock:  old,
			NewStock:  p.Stock,
			Quantity:  it.Quantity,
		})
	}
	if err := tx.SaveProducts(products); err != nil {
		return nil, err
	}

	metrics.StockReservationsTotal.WithLabelValues("applied").Inc()
	s.log.Debug().Int("lines", len(changes)).Msg("stock reserved")
	return changes, nil
}

// releaseTx applies the symmetric increments inside an already-open mutation.
// No availability re-check: a release can only increase stock.
func (s *InventoryService) releaseTx(tx *store.Tx, items []ports.StockRequest) ([]domain.StockChange, []domain.StockIssue, error) {
	products, err := tx.Products()
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}

	var (
		changes []domain.StockChange
		issues  []domain.StockIssue
	)
	for _, it := range items {
		i, ok := byID[it.ProductID]
		if !ok {
			issues = append(issues, domain.NewStockIssue(it.ProductID, domain.StockIssueNotFound, it.Quantity, 0))
			continue
		}
		p := &products[i]
		old := p.Stock
		p.Stock = old + it.Quantity
		changes = append(changes, domain.StockChange{
			ProductID: p.ID,
			OldStock:  old,
			NewStock:  p.Stock,
			Quantity:  it.Quantity,
		})
	}
	if len(changes) > 0 {
		if err := tx.SaveProducts(products); err != nil {
			return nil, nil, err
		}
		metrics.StockReleasesTotal.Add(float64(len(changes)))
	}
	if len(issues) > 0 {
		s.log.Warn().Int("missing", len(issues)).Msg("stock release referenced unknown products")
	}
	return changes, issues, nil
}

// checkAvailability classifies every requested line against the product list.
// Quantities are summed per product first, so duplicate lines for the same
// product cannot sneak past the stock comparison individually.
func checkAvailability(products []domain.Product, items []ports.StockRequest) domain.StockCheck {
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	wanted := make(map[string]int, len(items))
	var order []string
	for _, it := range items {
		if _, seen := wanted[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		wanted[it.ProductID] += it.Quantity
	}

	var issues []domain.StockIssue
	for _, id := range order {
		qty := wanted[id]
		p, ok := byID[id]
		switch {
		case !ok:
			issues = append(issues, domain.NewStockIssue(id, domain.StockIssueNotFound, qty, 0))
		case !p.IsActive:
			issues = append(issues, domain.NewStockIssue(id, domain.StockIssueInactive, qty, p.Stock))
		case p.Stock < qty:
			issues = append(issues, domain.NewStockIssue(id, domain.StockIssueInsufficient, qty, p.Stock))
		}
	}
	return domain.StockCheck{Available: len(issues) == 0, Issues: issues}
}
