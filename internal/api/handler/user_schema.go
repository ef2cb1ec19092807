package handler

import (
	"time"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// --- Request types ---

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type addressRequest struct {
	Label     string `json:"label"     validate:"required"`
	Street    string `json:"street"    validate:"required"`
	City      string `json:"city"      validate:"required"`
	ZipCode   string `json:"zip_code"  validate:"required"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

type paymentMethodRequest struct {
	Kind      string `json:"kind"      validate:"required,oneof=card cash"`
	Label     string `json:"label"     validate:"required"`
	LastFour  string `json:"last_four" validate:"omitempty,len=4"`
	IsDefault bool   `json:"is_default"`
}

// --- Response types ---

// userResponse is the public projection of a user record. The password hash
// never leaves the service.
type userResponse struct {
	ID             string                  `json:"id"`
	Email          string                  `json:"email"`
	Name           string                  `json:"name"`
	Role           string                  `json:"role"`
	IsActive       bool                    `json:"is_active"`
	Addresses      []domain.Address        `json:"addresses"`
	PaymentMethods []paymentMethodResponse `json:"payment_methods"`
	CreatedAt      time.Time               `json:"created_at"`
}

type paymentMethodResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	LastFour  string `json:"last_four,omitempty"`
	IsDefault bool   `json:"is_default"`
}

func toUserResponse(u *domain.User) userResponse {
	pms := make([]paymentMethodResponse, 0, len(u.PaymentMethods))
	for _, pm := range u.PaymentMethods {
		pms = append(pms, paymentMethodResponse{
			ID:        pm.ID,
			Kind:      pm.Kind,
			Label:     pm.Label,
			LastFour:  pm.LastFour,
			IsDefault: pm.IsDefault,
		})
	}
	addrs := u.Addresses
	if addrs == nil {
		addrs = []domain.Address{}
	}
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		IsActive:       u.IsActive,
		Addresses:      addrs,
		PaymentMethods: pms,
		CreatedAt:      u.CreatedAt,
	}
}
