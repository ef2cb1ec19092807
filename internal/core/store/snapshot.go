package store

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// Snapshot captures a point-in-time copy of every collection. Exporting a
// store and importing the snapshot into a fresh one yields identical entity
// collections, with indexes re-derived on import.
type Snapshot struct {
	Users         []domain.User          `json:"users"`
	Products      []domain.Product       `json:"products"`
	Orders        []domain.Order         `json:"orders"`
	Carts         map[string]domain.Cart `json:"carts"`
	Notifications []domain.Notification  `json:"notifications"`
}

// Export reads all collections under the shared lock.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		if snap.Users, err = tx.Users(); err != nil {
			return err
		}
		if snap.Products, err = tx.Products(); err != nil {
			return err
		}
		if snap.Orders, err = tx.Orders(); err != nil {
			return err
		}
		if snap.Carts, err = tx.Carts(); err != nil {
			return err
		}
		snap.Notifications, err = tx.Notifications()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Import overwrites every collection with the snapshot's contents and rebuilds
// the indexes.
func (s *Store) Import(ctx context.Context, snap *Snapshot) error {
	return s.Update(ctx, func(tx *Tx) error {
		if err := tx.SaveUsers(snap.Users); err != nil {
			return err
		}
		if err := tx.SaveProducts(snap.Products); err != nil {
			return err
		}
		if err := tx.SaveOrders(snap.Orders); err != nil {
			return err
		}
		carts := snap.Carts
		if carts == nil {
			carts = make(map[string]domain.Cart)
		}
		if err := tx.SaveCarts(carts); err != nil {
			return err
		}
		return tx.SaveNotifications(snap.Notifications)
	})
}
