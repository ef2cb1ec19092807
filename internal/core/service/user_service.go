package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// UserService implements account CRUD and the address / payment-method
// sub-collections.
type UserService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewUserService(st *store.Store, log zerolog.Logger) *UserService {
	return &UserService{store: st, log: log}
}

// Create registers a new account. Email is unique across all roles.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}

	var created domain.User
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Email == email {
				return domain.ErrEmailTaken
			}
		}

		now := time.Now().UTC()
		created = domain.User{
			ID:           tx.GenerateID(),
			Email:        email,
			Name:         in.Name,
			PasswordHash: in.PasswordHash,
			Role:         in.Role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.SaveUsers(append(users, created))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return &created, nil
}

// Get resolves a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var found *domain.User
	err := s.store.View(ctx, func(tx *store.Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		if i := findUser(users, id); i >= 0 {
			u := users[i]
			found = &u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

// GetByEmail resolves a user through the email index.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := s.store.UserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// Update merges the patch over the stored record and restamps UpdatedAt.
func (s *UserService) Update(ctx context.Context, id string, patch ports.UpdateUserPatch) (*domain.User, error) {
	var updated domain.User
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		i := findUser(users, id)
		if i < 0 {
			return domain.ErrUserNotFound
		}

		u := &users[i]
		if patch.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*patch.Email))
			if email == "" {
				return fmt.Errorf("%w: email is required", domain.ErrValidation)
			}
			for j, other := range users {
				if j != i && other.Email == email {
					return domain.ErrEmailTaken
				}
			}
			u.Email = email
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.IsActive != nil {
			u.IsActive = *patch.IsActive
		}
		u.UpdatedAt = time.Now().UTC()
		updated = *u
		return tx.SaveUsers(users)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Deactivate soft-deletes the account.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	inactive := false
	_, err := s.Update(ctx, id, ports.UpdateUserPatch{IsActive: &inactive})
	return err
}

// ListByRole lists all users holding the given role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	return s.store.UsersByRole(role), nil
}

// AddAddress appends an address to the user's sub-collection. The first
// address ever added is defaulted regardless of the requested flag; an
// explicit default clears the flag on all siblings first.
func (s *UserService) AddAddress(ctx context.Context, userID string, in ports.AddressInput) (*domain.Address, error) {
	var added domain.Address
	err := s.mutateUser(ctx, userID, func(tx *store.Tx, u *domain.User) error {
		addr := domain.Address{
			ID:        tx.GenerateID(),
			Label:     in.Label,
			Street:    in.Street,
			City:      in.City,
			ZipCode:   in.ZipCode,
			Phone:     in.Phone,
			IsDefault: in.IsDefault,
		}
		if in.IsDefault {
			clearDefaultAddresses(u)
		}
		u.Addresses = append(u.Addresses, addr)
		normalizeAddressDefaults(u)
		added = u.Addresses[len(u.Addresses)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateAddress replaces an address's fields, preserving the single-default
// invariant.
func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID string, in ports.AddressInput) (*domain.Address, error) {
	var updated domain.Address
	err := s.mutateUser(ctx, userID, func(_ *store.Tx, u *domain.User) error {
		i := -1
		for j := range u.Addresses {
			if u.Addresses[j].ID == addressID {
				i = j
				break
			}
		}
		if i < 0 {
			return domain.ErrAddressNotFound
		}
		if in.IsDefault {
			clearDefaultAddresses(u)
		}
		a := &u.Addresses[i]
		a.Label = in.Label
		a.Street = in.Street
		a.City = in.City
		a.ZipCode = in.ZipCode
		a.Phone = in.Phone
		a.IsDefault = in.IsDefault
		normalizeAddressDefaults(u)
		updated = u.Addresses[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveAddress deletes an address. Removing the default promotes the first
// remaining address, if any.
func (s *UserService) RemoveAddress(ctx context.Context, userID, addressID string) error {
	return s.mutateUser(ctx, userID, func(_ *store.Tx, u *domain.User) error {
		kept := u.Addresses[:0]
		removed := false
		for _, a := range u.Addresses {
			if a.ID == addressID {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if !removed {
			return domain.ErrAddressNotFound
		}
		u.Addresses = kept
		normalizeAddressDefaults(u)
		return nil
	})
}

// AddPaymentMethod mirrors AddAddress for the payment-method sub-collection.
func (s *UserService) AddPaymentMethod(ctx context.Context, userID string, in ports.PaymentMethodInput) (*domain.PaymentMethod, error) {
	var added domain.PaymentMethod
	err := s.mutateUser(ctx, userID, func(tx *store.Tx, u *domain.User) error {
		pm := domain.PaymentMethod{
			ID:        tx.GenerateID(),
			Kind:      in.Kind,
			Label:     in.Label,
			LastFour:  in.LastFour,
			IsDefault: in.IsDefault,
		}
		if in.IsDefault {
			clearDefaultPaymentMethods(u)
		}
		u.PaymentMethods = append(u.PaymentMethods, pm)
		normalizePaymentDefaults(u)
		added = u.PaymentMethods[len(u.PaymentMethods)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// RemovePaymentMethod mirrors RemoveAddress.
func (s *UserService) RemovePaymentMethod(ctx context.Context, userID, paymentMethodID string) error {
	return s.mutateUser(ctx, userID, func(_ *store.Tx, u *domain.User) error {
		kept := u.PaymentMethods[:0]
		removed := false
		for _, pm := range u.PaymentMethods {
			if pm.ID == paymentMethodID {
				removed = true
				continue
			}
			kept = append(kept, pm)
		}
		if !removed {
			return domain.ErrPaymentMethodNotFound
		}
		u.PaymentMethods = kept
		normalizePaymentDefaults(u)
		return nil
	})
}

// mutateUser locates the user, applies fn, restamps UpdatedAt and persists.
func (s *UserService) mutateUser(ctx context.Context, userID string, fn func(tx *store.Tx, u *domain.User) error) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		i := findUser(users, userID)
		if i < 0 {
			return domain.ErrUserNotFound
		}
		if err := fn(tx, &users[i]); err != nil {
			return err
		}
		users[i].UpdatedAt = time.Now().UTC()
		return tx.SaveUsers(users)
	})
}

func findUser(users []domain.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func clearDefaultAddresses(u *domain.User) {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = false
	}
}

func clearDefaultPaymentMethods(u *domain.User) {
	for i := range u.PaymentMethods {
		u.PaymentMethods[i].IsDefault = false
	}
}

// normalizeAddressDefaults enforces: at most one default, and exactly one once
// the list is non-empty.
func normalizeAddressDefaults(u *domain.User) {
	seen := false
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			if seen {
				u.Addresses[i].IsDefault = false
			}
			seen = true
		}
	}
	if !seen && len(u.Addresses) > 0 {
		u.Addresses[0].IsDefault = true
	}
}

func normalizePaymentDefaults(u *domain.User) {
	seen := false
	for i := range u.PaymentMethods {
		if u.PaymentMethods[i].IsDefault {
			if seen {
				u.PaymentMethods[i].IsDefault = false
			}
			seen = true
		}
	}
	if !seen && len(u.PaymentMethods) > 0 {
		u.PaymentMethods[0].IsDefault = true
	}
}
