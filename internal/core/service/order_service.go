package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/api/metrics"
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// Notifier abstracts the async notification dispatcher. A nil Notifier is
// valid: order operations then simply emit nothing.
type Notifier interface {
	Notify(in ports.NotificationInput)
}

// OrderService governs the order lifecycle. Creation and cancellation share
// one store critical section with the inventory ledger, so a concurrent caller
// can never observe stock reserved for an order that does not exist yet.
type OrderService struct {
	store     *store.Store
	inventory *InventoryService
	notifier  Notifier
	log       zerolog.Logger
}

func NewOrderService(st *store.Store, inventory *InventoryService, notifier Notifier, log zerolog.Logger) *OrderService {
	return &OrderService{store: st, inventory: inventory, notifier: notifier, log: log}
}

// Create places an order against a single pharmacy: validate, reserve stock,
// persist. If the order write fails after reservation, the same critical
// section compensates by releasing what was just reserved.
func (s *OrderService) Create(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", domain.ErrValidation)
	}
	if in.PharmacyID == "" {
		return nil, fmt.Errorf("%w: pharmacy_id is required", domain.ErrValidation)
	}
	if err := validateOrderItems(in.Items); err != nil {
		return nil, err
	}

	var result ports.CreateOrderResult
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}

		// Snapshot names and unit prices before reserving, and make sure every
		// line belongs to the pharmacy the order is addressed to.
		lines := make([]domain.OrderItem, 0, len(in.Items))
		reqs := make([]ports.StockRequest, 0, len(in.Items))
		for _, it := range in.Items {
			reqs = append(reqs, ports.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
			if i := findProduct(products, it.ProductID); i >= 0 {
				p := products[i]
				if p.PharmacyID != in.PharmacyID {
					return fmt.Errorf("%w: product %s belongs to another pharmacy", domain.ErrValidation, p.ID)
				}
				lines = append(lines, domain.OrderItem{
					ProductID: p.ID,
					Name:      p.Name,
					Price:     p.Price,
					Quantity:  it.Quantity,
				})
			}
		}

		reserved, err := s.inventory.reserveTx(tx, reqs)
		if err != nil {
			return err
		}

		order := s.newOrder(tx, in.CustomerID, in.PharmacyID, lines)
		orders, err := tx.Orders()
		if err != nil {
			// Stock is already decremented; hand it back before surfacing the error.
			s.compensate(tx, reqs)
			return err
		}
		if err := tx.SaveOrders(append(orders, order)); err != nil {
			s.compensate(tx, reqs)
			return err
		}

		result = ports.CreateOrderResult{Order: &order, Reserved: reserved}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	s.log.Info().
		Str("order_number", result.Order.OrderNumber).
		Str("customer_id", in.CustomerID).
		Str("pharmacy_id", in.PharmacyID).
		Msg("order created")
	s.notifyOrderCreated(result.Order)

	return &result, nil
}

// Checkout places the customer's whole cart: one verification pass over every
// line, then one order per pharmacy represented in the cart. The cart is
// cleared only when everything else persisted.
func (s *OrderService) Checkout(ctx context.Context, customerID string) (*ports.CheckoutResult, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", domain.ErrValidation)
	}

	var result ports.CheckoutResult
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		carts, err := tx.Carts()
		if err != nil {
			return err
		}
		cart, ok := carts[customerID]
		if !ok || len(cart.Items) == 0 {
			return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
		}
		for _, it := range cart.Items {
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: item %s has non-positive quantity", domain.ErrValidation, it.ProductID)
			}
		}

		reqs := make([]ports.StockRequest, 0, len(cart.Items))
		for _, it := range cart.Items {
			reqs = append(reqs, ports.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		reserved, err := s.inventory.reserveTx(tx, reqs)
		if err != nil {
			return err
		}

		// Group cart lines per pharmacy, preserving cart order.
		var pharmacies []string
		grouped := make(map[string][]domain.OrderItem)
		for _, it := range cart.Items {
			if _, seen := grouped[it.PharmacyID]; !seen {
				pharmacies = append(pharmacies, it.PharmacyID)
			}
			grouped[it.PharmacyID] = append(grouped[it.PharmacyID], domain.OrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
			})
		}

		orders, err := tx.Orders()
		if err != nil {
			s.compensate(tx, reqs)
			return err
		}
		created := make([]domain.Order, 0, len(pharmacies))
		for _, pharmacyID := range pharmacies {
			created = append(created, s.newOrder(tx, customerID, pharmacyID, grouped[pharmacyID]))
		}
		if err := tx.SaveOrders(append(orders, created...)); err != nil {
			s.compensate(tx, reqs)
			return err
		}

		delete(carts, customerID)
		if err := tx.SaveCarts(carts); err != nil {
			// Orders and reservations are already durable; a stale cart is
			// recoverable, losing the orders is not.
			s.log.Warn().Err(err).Str("user_id", customerID).Msg("cart clear failed after checkout")
		}

		result = ports.CheckoutResult{Orders: created, Reserved: reserved}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range result.Orders {
		metrics.OrdersCreatedTotal.Inc()
		s.notifyOrderCreated(&result.Orders[i])
	}
	s.log.Info().Str("customer_id", customerID).Int("orders", len(result.Orders)).Msg("cart checked out")
	return &result, nil
}

// Get resolves an order by id.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.find(ctx, func(o domain.Order) bool { return o.ID == id })
}

// GetByNumber resolves an order by its human-readable number.
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.find(ctx, func(o domain.Order) bool { return o.OrderNumber == orderNumber })
}

// UpdateStatus applies one state machine transition and its side effects.
// Transitions to cancelled go through Cancel so the stock release always runs.
func (s *OrderService) UpdateStatus(ctx context.Context, in ports.UpdateStatusInput) (*ports.StatusUpdateResult, error) {
	if in.Status == domain.StatusCancelled {
		return s.Cancel(ctx, ports.CancelOrderInput{OrderID: in.OrderID})
	}

	var updated domain.Order
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		i := findOrder(orders, in.OrderID)
		if i < 0 {
			return domain.ErrOrderNotFound
		}

		o := &orders[i]
		if !o.Status.CanTransitionTo(in.Status) {
			return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, o.Status, in.Status)
		}

		now := time.Now().UTC()
		switch in.Status {
		case domain.StatusAccepted:
			o.AcceptedAt = &now
		case domain.StatusPreparing:
			o.PreparingAt = &now
		case domain.StatusReady:
			o.ReadyAt = &now
		case domain.StatusPickedUp:
			o.PickedUpAt = &now
			if in.RiderID != "" {
				o.RiderID = in.RiderID
			}
		case domain.StatusDelivered:
			o.DeliveredAt = &now
		}
		o.Status = in.Status
		o.UpdatedAt = now
		updated = *o
		return tx.SaveOrders(orders)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(in.Status)).Inc()
	s.log.Info().
		Str("order_number", updated.OrderNumber).
		Str("status", string(in.Status)).
		Msg("order status updated")
	s.notify(updated.CustomerID, domain.NotificationOrderStatus,
		"Order "+updated.OrderNumber+" updated",
		fmt.Sprintf("Your order is now %s.", strings.ReplaceAll(string(in.Status), "_", " ")))

	return &ports.StatusUpdateResult{Order: &updated}, nil
}

// Cancel moves a non-terminal order to cancelled and releases its reservation.
// Release problems are attached to the result; they never block the
// cancellation itself. Cancelling a delivered or already-cancelled order is
// rejected without touching stock.
func (s *OrderService) Cancel(ctx context.Context, in ports.CancelOrderInput) (*ports.StatusUpdateResult, error) {
	var (
		updated       domain.Order
		releaseIssues []domain.StockIssue
	)
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		i := findOrder(orders, in.OrderID)
		if i < 0 {
			return domain.ErrOrderNotFound
		}

		o := &orders[i]
		if o.Status.IsTerminal() {
			return fmt.Errorf("%w: order is already %s", domain.ErrInvalidTransition, o.Status)
		}

		now := time.Now().UTC()
		if o.StockReserved && len(o.Items) > 0 {
			reqs := make([]ports.StockRequest, 0, len(o.Items))
			for _, it := range o.Items {
				reqs = append(reqs, ports.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
			}
			_, issues, err := s.inventory.releaseTx(tx, reqs)
			if err != nil {
				return err
			}
			releaseIssues = issues
			o.StockReserved = false
			o.StockReleased = true
			o.ReleasedAt = &now
		}

		o.Status = domain.StatusCancelled
		o.CancelledAt = &now
		o.CancellationReason = in.Reason
		o.UpdatedAt = now
		updated = *o
		return tx.SaveOrders(orders)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	s.log.Info().Str("order_number", updated.OrderNumber).Str("reason", in.Reason).Msg("order cancelled")
	s.notify(updated.CustomerID, domain.NotificationOrderCancelled,
		"Order "+updated.OrderNumber+" cancelled",
		"Your order has been cancelled.")
	s.notify(updated.PharmacyID, domain.NotificationOrderCancelled,
		"Order "+updated.OrderNumber+" cancelled",
		"Order "+updated.OrderNumber+" was cancelled.")

	return &ports.StatusUpdateResult{Order: &updated, ReleaseIssues: releaseIssues}, nil
}

// ListByCustomer lists orders through the customer index.
func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.store.OrdersByCustomer(customerID), nil
}

// ListByPharmacy lists orders through the pharmacy index.
func (s *OrderService) ListByPharmacy(ctx context.Context, pharmacyID string) ([]domain.Order, error) {
	return s.store.OrdersByPharmacy(pharmacyID), nil
}

// ListByStatus lists orders through the status index.
func (s *OrderService) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return s.store.OrdersByStatus(status), nil
}

// newOrder constructs a pending order with its reservation already applied.
func (s *OrderService) newOrder(tx *store.Tx, customerID, pharmacyID string, items []domain.OrderItem) domain.Order {
	now := time.Now().UTC()
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return domain.Order{
		ID:            tx.GenerateID(),
		OrderNumber:   generateOrderNumber(now),
		CustomerID:    customerID,
		PharmacyID:    pharmacyID,
		Items:         items,
		Status:        domain.StatusPending,
		Total:         total,
		StockReserved: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// compensate releases an already-applied reservation after a failed persist.
// Best effort: the failure that got us here is the one worth surfacing.
func (s *OrderService) compensate(tx *store.Tx, reqs []ports.StockRequest) {
	if _, _, err := s.inventory.releaseTx(tx, reqs); err != nil {
		s.log.Error().Err(err).Msg("stock release after failed order persist also failed")
	}
}

func (s *OrderService) notifyOrderCreated(o *domain.Order) {
	s.notify(o.PharmacyID, domain.NotificationOrderCreated,
		"New order "+o.OrderNumber,
		fmt.Sprintf("You received a new order with %d item(s).", len(o.Items)))
}

func (s *OrderService) notify(userID string, t domain.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ports.NotificationInput{UserID: userID, Type: t, Title: title, Message: message})
}

func validateOrderItems(items []ports.OrderItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}
	for _, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item is missing product_id", domain.ErrValidation)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %s has non-positive quantity", domain.ErrValidation, it.ProductID)
		}
	}
	return nil
}

func findOrder(orders []domain.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

// generateOrderNumber returns a unique order number in the format
// ORD<yymmdd><4 hex chars>.
func generateOrderNumber(now time.Time) string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("ORD%s%04X", now.Format("060102"), now.UnixNano()&0xFFFF)
	}
	return fmt.Sprintf("ORD%s%s", now.Format("060102"), strings.ToUpper(hex.EncodeToString(b)))
}

func (s *OrderService) find(ctx context.Context, match func(domain.Order) bool) (*domain.Order, error) {
	var found *domain.Order
	err := s.store.View(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		for _, o := range orders {
			if match(o) {
				clone := o
				found = &clone
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrOrderNotFound
	}
	return found, nil
}
