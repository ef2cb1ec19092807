package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// ---------------------------------------------------------------------------
// In-memory stub backend
// ---------------------------------------------------------------------------

// stubBackend is a map-backed storage medium. setErr, when set for a key,
// makes writes to that key fail; reads keep working. Used to exercise the
// compensation path after a failed persist.
type stubBackend struct {
	data   map[string][]byte
	setErr map[string]error
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		data:   make(map[string][]byte),
		setErr: make(map[string]error),
	}
}

func (b *stubBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *stubBackend) Set(_ context.Context, key string, value []byte) error {
	if err := b.setErr[key]; err != nil {
		return err
	}
	b.data[key] = value
	return nil
}

func (b *stubBackend) Ping(_ context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestStore(t *testing.T) (*store.Store, *stubBackend) {
	t.Helper()
	backend := newStubBackend()
	return store.New(backend, discardLogger), backend
}

func seedProducts(t *testing.T, st *store.Store, products ...domain.Product) {
	t.Helper()
	err := st.Update(context.Background(), func(tx *store.Tx) error {
		return tx.SaveProducts(products)
	})
	if err != nil {
		t.Fatalf("seed products: %v", err)
	}
}

func activeProduct(id, pharmacyID string, price float64, stock int) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:         id,
		PharmacyID: pharmacyID,
		Name:       "Product " + id,
		Category:   "analgesics",
		Price:      price,
		Stock:      stock,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func productStock(t *testing.T, st *store.Store, id string) int {
	t.Helper()
	stock := -1
	err := st.View(context.Background(), func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.ID == id {
				stock = p.Stock
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read products: %v", err)
	}
	if stock < 0 {
		t.Fatalf("product %s not found", id)
	}
	return stock
}

// captureNotifier records every notification handed to it, synchronously.
type captureNotifier struct {
	inputs []ports.NotificationInput
}

func (n *captureNotifier) Notify(in ports.NotificationInput) {
	n.inputs = append(n.inputs, in)
}
