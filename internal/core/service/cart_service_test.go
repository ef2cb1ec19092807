package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

func TestCartService_Get_MissingCartIsEmpty(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewCartService(st, discardLogger)

	cart, err := svc.Get(context.Background(), "cust1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.UserID != "cust1" || len(cart.Items) != 0 || cart.Total != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

func TestCartService_AddItem_SnapshotsAndMerges(t *testing.T) {
	st, _ := newTestStore(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 12.50, 10))
	svc := NewCartService(st, discardLogger)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cust1", "p1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	line := cart.Items[0]
	if line.Name != "Product p1" || line.Price != 12.50 || line.PharmacyID != "ph1" {
		t.Errorf("catalog snapshot wrong: %+v", line)
	}
	if cart.Total != 25 {
		t.Errorf("expected total 25, got %v", cart.Total)
	}

	// Same product again: quantities merge into one line.
	cart, err = svc.AddItem(ctx, "cust1", "p1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Errorf("expected merged line with quantity 5, got %+v", cart.Items)
	}
	if cart.Total != 62.50 {
		t.Errorf("expected total 62.50, got %v", cart.Total)
	}
}

func TestCartService_AddItem_InactiveProductRejected(t *testing.T) {
	st, _ := newTestStore(t)
	p := activeProduct("p1", "ph1", 10, 10)
	p.IsActive = false
	seedProducts(t, st, p)
	svc := NewCartService(st, discardLogger)

	_, err := svc.AddItem(context.Background(), "cust1", "p1", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartService_AddItem_ValidatesQuantity(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewCartService(st, discardLogger)

	if _, err := svc.AddItem(context.Background(), "cust1", "p1", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCartService_UpdateItem(t *testing.T) {
	st, _ := newTestStore(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	svc := NewCartService(st, discardLogger)
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "cust1", "p1", 2)

	cart, err := svc.UpdateItem(ctx, "cust1", "p1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Items[0].Quantity != 4 || cart.Total != 40 {
		t.Errorf("update not applied: %+v", cart)
	}

	// Quantity 0 removes the line.
	cart, err = svc.UpdateItem(ctx, "cust1", "p1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 || cart.Total != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}

	if _, err := svc.UpdateItem(ctx, "cust1", "ghost", 1); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewCartService(st, discardLogger)

	_, err := svc.RemoveItem(context.Background(), "cust1", "ghost")
	if !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartService_Clear(t *testing.T) {
	st, _ := newTestStore(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	svc := NewCartService(st, discardLogger)
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "cust1", "p1", 2)
	if err := svc.Clear(ctx, "cust1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, _ := svc.Get(ctx, "cust1")
	if len(cart.Items) != 0 {
		t.Errorf("expected cleared cart, got %+v", cart)
	}

	// Clearing an absent cart is a no-op, not an error.
	if err := svc.Clear(ctx, "ghost"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
