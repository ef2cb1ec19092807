// Package store implements the persistent data layer: JSON-serialized entity
// collections over a swappable storage backend, opaque ID generation, and the
// derived lookup indexes.
//
// Every mutation runs inside a single critical section (Update) and ends with
// a full index rebuild. That one lock is what makes the inventory ledger's
// check-then-apply cycle safe under concurrent callers.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// Collection keys on the backend. One key holds one whole collection.
const (
	keyUsers         = "pharmarun:users"
	keyProducts      = "pharmarun:products"
	keyOrders        = "pharmarun:orders"
	keyCarts         = "pharmarun:carts"
	keyNotifications = "pharmarun:notifications"
)

// Store is the single authoritative gateway to persisted state. Construct one
// per backend and hand it to the services; there is no ambient global.
type Store struct {
	backend ports.StorageBackend
	log     zerolog.Logger

	mu  sync.RWMutex
	idx index
}

// New wraps the given backend. Call Reindex once before serving reads so the
// lookup maps reflect whatever the medium already holds.
func New(backend ports.StorageBackend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log,
		idx:     newIndex(),
	}
}

// GenerateID returns a unique opaque id: id_<unix-ms>_<8 hex chars>.
func (s *Store) GenerateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("id_%d_%08x", time.Now().UnixMilli(), time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("id_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}

// Tx exposes collection access while the store lock is held. A Tx is only
// valid inside the Update or View callback that produced it.
type Tx struct {
	store *Store
	ctx   context.Context
}

// Update runs fn as one mutation: no other Update or View can interleave, and
// all indexes are rebuilt from the persisted collections before the lock is
// released, whether fn succeeded or not. A half-applied fn therefore leaves
// the indexes consistent with whatever actually reached the backend.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{store: s, ctx: ctx}
	err := fn(tx)

	if rerr := s.rebuildIndexes(tx); rerr != nil {
		s.log.Error().Err(rerr).Msg("index rebuild failed")
		if err == nil {
			err = rerr
		}
	}
	return err
}

// View runs fn under the shared read lock.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{store: s, ctx: ctx})
}

// Reindex rebuilds all lookup maps from the backend. Used at startup and after
// importing a snapshot.
func (s *Store) Reindex(ctx context.Context) error {
	return s.Update(ctx, func(*Tx) error { return nil })
}

// Ping reports whether the underlying medium is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// loadCollection reads and decodes the value at key into out. An absent key is
// identical to an empty collection, and so is a value that fails to parse: the
// store logs the parse failure and hands the caller a fresh start.
func (s *Store) loadCollection(ctx context.Context, key string, out any) error {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("store: get %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stored record unparseable, treating as empty")
	}
	return nil
}

func (s *Store) saveCollection(ctx context.Context, key string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// Users loads the full user collection.
func (tx *Tx) Users() ([]domain.User, error) {
	var users []domain.User
	if err := tx.store.loadCollection(tx.ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers overwrites the full user collection.
func (tx *Tx) SaveUsers(users []domain.User) error {
	return tx.store.saveCollection(tx.ctx, keyUsers, users)
}

// Products loads the full product collection.
func (tx *Tx) Products() ([]domain.Product, error) {
	var products []domain.Product
	if err := tx.store.loadCollection(tx.ctx, keyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProducts overwrites the full product collection.
func (tx *Tx) SaveProducts(products []domain.Product) error {
	return tx.store.saveCollection(tx.ctx, keyProducts, products)
}

// Orders loads the full order collection.
func (tx *Tx) Orders() ([]domain.Order, error) {
	var orders []domain.Order
	if err := tx.store.loadCollection(tx.ctx, keyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrders overwrites the full order collection.
func (tx *Tx) SaveOrders(orders []domain.Order) error {
	return tx.store.saveCollection(tx.ctx, keyOrders, orders)
}

// Carts loads all carts, keyed by user id.
func (tx *Tx) Carts() (map[string]domain.Cart, error) {
	carts := make(map[string]domain.Cart)
	if err := tx.store.loadCollection(tx.ctx, keyCarts, &carts); err != nil {
		return nil, err
	}
	if carts == nil {
		carts = make(map[string]domain.Cart)
	}
	return carts, nil
}

// SaveCarts overwrites all carts.
func (tx *Tx) SaveCarts(carts map[string]domain.Cart) error {
	return tx.store.saveCollection(tx.ctx, keyCarts, carts)
}

// Notifications loads the full notification collection.
func (tx *Tx) Notifications() ([]domain.Notification, error) {
	var ns []domain.Notification
	if err := tx.store.loadCollection(tx.ctx, keyNotifications, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// SaveNotifications overwrites the full notification collection.
func (tx *Tx) SaveNotifications(ns []domain.Notification) error {
	return tx.store.saveCollection(tx.ctx, keyNotifications, ns)
}

// GenerateID delegates to the owning store.
func (tx *Tx) GenerateID() string {
	return tx.store.GenerateID()
}
