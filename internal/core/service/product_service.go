package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// ProductService implements catalog CRUD. Stock mutations outside the
// inventory ledger go through AdjustStock, which clamps at zero.
type ProductService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewProductService(st *store.Store, log zerolog.Logger) *ProductService {
	return &ProductService{store: st, log: log}
}

func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	if in.PharmacyID == "" {
		return nil, fmt.Errorf("%w: pharmacy_id is required", domain.ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}

	var created domain.Product
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		created = domain.Product{
			ID:          tx.GenerateID(),
			PharmacyID:  in.PharmacyID,
			Name:        in.Name,
			Description: in.Description,
			Category:    in.Category,
			SKU:         in.SKU,
			Price:       in.Price,
			Stock:       in.Stock,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.SaveProducts(append(products, created))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("product_id", created.ID).Str("pharmacy_id", created.PharmacyID).Msg("product created")
	return &created, nil
}

func (s *ProductService) Get(ctx context.Context, id string, includeInactive bool) (*domain.Product, error) {
	var found *domain.Product
	err := s.store.View(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		if i := findProduct(products, id); i >= 0 {
			p := products[i]
			found = &p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil || (!includeInactive && !found.IsActive) {
		return nil, domain.ErrProductNotFound
	}
	return found, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch ports.UpdateProductPatch) (*domain.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}

	var updated domain.Product
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := findProduct(products, id)
		if i < 0 {
			return domain.ErrProductNotFound
		}

		p := &products[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.SKU != nil {
			p.SKU = *patch.SKU
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		p.UpdatedAt = time.Now().UTC()
		updated = *p
		return tx.SaveProducts(products)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete soft-deletes the product: it disappears from customer-facing views
// but stays on record for existing orders.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	inactive := false
	_, err := s.Update(ctx, id, ports.UpdateProductPatch{IsActive: &inactive})
	return err
}

func (s *ProductService) ListActive(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, func(p domain.Product) bool { return p.IsActive })
}

func (s *ProductService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, func(domain.Product) bool { return true })
}

// ListByCategory serves the customer-facing browse view: active only.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all := s.store.ProductsByCategory(category)
	active := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *ProductService) ListByPharmacy(ctx context.Context, pharmacyID string, includeInactive bool) ([]domain.Product, error) {
	return s.list(ctx, func(p domain.Product) bool {
		return p.PharmacyID == pharmacyID && (includeInactive || p.IsActive)
	})
}

// AdjustStock applies a direct delta for pharmacy-side corrections. The result
// is clamped at zero rather than rejected, matching how manual corrections are
// expected to behave.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	var updated domain.Product
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := findProduct(products, id)
		if i < 0 {
			return domain.ErrProductNotFound
		}

		p := &products[i]
		next := p.Stock + delta
		if next < 0 {
			next = 0
		}
		p.Stock = next
		p.UpdatedAt = time.Now().UTC()
		updated = *p
		return tx.SaveProducts(products)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProductService) list(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	var out []domain.Product
	err := s.store.View(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		for _, p := range products {
			if keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func findProduct(products []domain.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
