package domain

import "time"

// CartItem is a single line in a user's cart. Unlike an OrderItem it carries
// the owning pharmacy, so checkout can split the cart into per-pharmacy orders.
type CartItem struct {
	ProductID  string  `json:"product_id"`
	PharmacyID string  `json:"pharmacy_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Cart holds a customer's pending items, keyed by user id. The total is
// derived and recomputed on every mutation; the cart never holds stock.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecomputeTotal refreshes the derived total from the item lines.
func (c *Cart) RecomputeTotal() {
	total := 0.0
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	c.Total = total
}
