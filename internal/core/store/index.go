package store

import (
	"time"

	"github.com/pharmarun/pharmacy-delivery/internal/api/metrics"
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// index holds the derived lookup mappings. It is never the source of truth:
// every mapping is dropped and rebuilt from a full rescan of the persisted
// collections at the end of each mutation. O(total records), acceptable at
// this data volume; correctness-by-simplicity over incremental maintenance.
type index struct {
	usersByEmail       map[string]domain.User
	usersByRole        map[domain.Role][]domain.User
	ordersByStatus     map[domain.OrderStatus][]domain.Order
	ordersByCustomer   map[string][]domain.Order
	ordersByPharmacy   map[string][]domain.Order
	productsByCategory map[string][]domain.Product
}

func newIndex() index {
	return index{
		usersByEmail:       make(map[string]domain.User),
		usersByRole:        make(map[domain.Role][]domain.User),
		ordersByStatus:     make(map[domain.OrderStatus][]domain.Order),
		ordersByCustomer:   make(map[string][]domain.Order),
		ordersByPharmacy:   make(map[string][]domain.Order),
		productsByCategory: make(map[string][]domain.Product),
	}
}

// rebuildIndexes rescans users, orders and products. Caller must hold the
// write lock.
func (s *Store) rebuildIndexes(tx *Tx) error {
	start := time.Now()

	users, err := tx.Users()
	if err != nil {
		return err
	}
	orders, err := tx.Orders()
	if err != nil {
		return err
	}
	products, err := tx.Products()
	if err != nil {
		return err
	}

	idx := newIndex()
	for _, u := range users {
		idx.usersByEmail[u.Email] = u
		idx.usersByRole[u.Role] = append(idx.usersByRole[u.Role], u)
	}
	for _, o := range orders {
		idx.ordersByStatus[o.Status] = append(idx.ordersByStatus[o.Status], o)
		idx.ordersByCustomer[o.CustomerID] = append(idx.ordersByCustomer[o.CustomerID], o)
		idx.ordersByPharmacy[o.PharmacyID] = append(idx.ordersByPharmacy[o.PharmacyID], o)
	}
	for _, p := range products {
		idx.productsByCategory[p.Category] = append(idx.productsByCategory[p.Category], p)
	}
	s.idx = idx

	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	return nil
}

// UserByEmail resolves a user through the email index.
func (s *Store) UserByEmail(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.idx.usersByEmail[email]
	return u, ok
}

// UsersByRole lists all users holding the given role.
func (s *Store) UsersByRole(role domain.Role) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.idx.usersByRole[role])
}

// OrdersByStatus lists all orders currently in the given status.
func (s *Store) OrdersByStatus(status domain.OrderStatus) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.idx.ordersByStatus[status])
}

// OrdersByCustomer lists all orders placed by the given customer.
func (s *Store) OrdersByCustomer(customerID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.idx.ordersByCustomer[customerID])
}

// OrdersByPharmacy lists all orders addressed to the given pharmacy.
func (s *Store) OrdersByPharmacy(pharmacyID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.idx.ordersByPharmacy[pharmacyID])
}

// ProductsByCategory lists all products in the given category, including
// inactive ones; callers filter for their view.
func (s *Store) ProductsByCategory(category string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.idx.productsByCategory[category])
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
