package domain

import "errors"

// Single-cause failures. These fail immediately and loudly; callers match them
// with errors.Is.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrAddressNotFound       = errors.New("address not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrCartItemNotFound      = errors.New("cart item not found")

	ErrEmailTaken = errors.New("email already registered")

	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("access forbidden")
)
