package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// CreateUserInput carries all data needed to create a new account.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         domain.Role
}

// UpdateUserPatch is a merge-style patch: nil fields are left untouched.
type UpdateUserPatch struct {
	Name     *string
	Email    *string
	IsActive *bool
}

// AddressInput holds a delivery address as submitted by the caller.
type AddressInput struct {
	Label     string
	Street    string
	City      string
	ZipCode   string
	Phone     string
	IsDefault bool
}

// PaymentMethodInput holds a (simulated) payment instrument.
type PaymentMethodInput struct {
	Kind      string
	Label     string
	LastFour  string
	IsDefault bool
}

// UserService defines account operations, including the address and
// payment-method sub-collections with their single-default invariant.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, patch UpdateUserPatch) (*domain.User, error)
	// Deactivate soft-deletes the account (IsActive=false); the record stays.
	Deactivate(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)

	AddAddress(ctx context.Context, userID string, in AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, in AddressInput) (*domain.Address, error)
	RemoveAddress(ctx context.Context, userID, addressID string) error

	AddPaymentMethod(ctx context.Context, userID string, in PaymentMethodInput) (*domain.PaymentMethod, error)
	RemovePaymentMethod(ctx context.Context, userID, paymentMethodID string) error
}
