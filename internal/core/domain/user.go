package domain

import "time"

// Address is a delivery address owned by a user. At most one address per user
// carries IsDefault=true; the first address ever added is defaulted
// automatically.
type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// PaymentMethod is a stored (simulated) payment instrument. The same
// single-default rule as Address applies.
type PaymentMethod struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"` // e.g. "card", "cash"
	Label     string `json:"label"`
	LastFour  string `json:"last_four,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// User models any account on the platform: customer, pharmacy, rider or admin.
type User struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	PasswordHash   string          `json:"password_hash,omitempty"`
	Role           Role            `json:"role"`
	IsActive       bool            `json:"is_active"`
	Addresses      []Address       `json:"addresses"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DefaultAddress returns the address currently flagged default, or nil.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

// DefaultPaymentMethod returns the payment method currently flagged default, or nil.
func (u *User) DefaultPaymentMethod() *PaymentMethod {
	for i := range u.PaymentMethods {
		if u.PaymentMethods[i].IsDefault {
			return &u.PaymentMethods[i]
		}
	}
	return nil
}
