package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// CartService manages the per-user cart records. Carts are ephemeral: totals
// are recomputed on every mutation and nothing here touches stock.
type CartService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewCartService(st *store.Store, log zerolog.Logger) *CartService {
	return &CartService{store: st, log: log}
}

// Get returns the user's cart; a user without one gets an empty cart.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		carts, err := tx.Carts()
		if err != nil {
			return err
		}
		if c, ok := carts[userID]; ok {
			cart = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem puts quantity units of an active product into the cart, merging with
// an existing line for the same product. Name and unit price are snapshotted
// from the catalog at add time.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	var cart domain.Cart
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		i := findProduct(products, productID)
		if i < 0 || !products[i].IsActive {
			return domain.ErrProductNotFound
		}
		p := products[i]

		carts, err := tx.Carts()
		if err != nil {
			return err
		}
		c := carts[userID]
		c.UserID = userID

		merged := false
		for j := range c.Items {
			if c.Items[j].ProductID == productID {
				c.Items[j].Quantity += quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, domain.CartItem{
				ProductID:  p.ID,
				PharmacyID: p.PharmacyID,
				Name:       p.Name,
				Price:      p.Price,
				Quantity:   quantity,
			})
		}
		c.RecomputeTotal()
		c.UpdatedAt = time.Now().UTC()
		carts[userID] = c
		cart = c
		return tx.SaveCarts(carts)
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateItem sets the quantity of an existing line. Quantity 0 removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	var cart domain.Cart
	err := s.mutateCart(ctx, userID, func(c *domain.Cart) error {
		for j := range c.Items {
			if c.Items[j].ProductID == productID {
				c.Items[j].Quantity = quantity
				cart = *c
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := s.mutateCart(ctx, userID, func(c *domain.Cart) error {
		kept := c.Items[:0]
		removed := false
		for _, it := range c.Items {
			if it.ProductID == productID {
				removed = true
				continue
			}
			kept = append(kept, it)
		}
		if !removed {
			return domain.ErrCartItemNotFound
		}
		c.Items = kept
		return nil
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Clear removes the cart record entirely. This is a true delete, not a soft one.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		carts, err := tx.Carts()
		if err != nil {
			return err
		}
		delete(carts, userID)
		return tx.SaveCarts(carts)
	})
}

// mutateCart loads the user's cart, applies fn, refreshes the derived total
// and persists. A missing cart is an empty one.
func (s *CartService) mutateCart(ctx context.Context, userID string, fn func(c *domain.Cart) error, out *domain.Cart) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		carts, err := tx.Carts()
		if err != nil {
			return err
		}
		c := carts[userID]
		c.UserID = userID
		if err := fn(&c); err != nil {
			return err
		}
		c.RecomputeTotal()
		c.UpdatedAt = time.Now().UTC()
		carts[userID] = c
		*out = c
		return tx.SaveCarts(carts)
	})
}
