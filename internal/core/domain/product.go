package domain

import "time"

// Product is a catalog item owned by a pharmacy. Stock is mutated only through
// pharmacy-side edits and the inventory ledger, and must never go negative.
type Product struct {
	ID          string    `json:"id"`
	PharmacyID  string    `json:"pharmacy_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
