package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// RegisterInput carries the data for self-service registration.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// AuthService handles registration and credential-based login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed token and the authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
