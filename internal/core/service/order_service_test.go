package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

func newOrderService(t *testing.T) (*OrderService, *store.Store, *stubBackend, *captureNotifier) {
	t.Helper()
	st, backend := newTestStore(t)
	notifier := &captureNotifier{}
	inventory := NewInventoryService(st, discardLogger)
	return NewOrderService(st, inventory, notifier, discardLogger), st, backend, notifier
}

func orderInput(items ...ports.OrderItemInput) ports.CreateOrderInput {
	return ports.CreateOrderInput{
		CustomerID: "cust1",
		PharmacyID: "ph1",
		Items:      items,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestOrderService_Create_ReservesStock(t *testing.T) {
	svc, st, _, notifier := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 12.50, 10))

	result, err := svc.Create(context.Background(), orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := result.Order
	if order.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if !order.StockReserved {
		t.Error("StockReserved must be true")
	}
	if order.Total != 37.50 {
		t.Errorf("expected total 37.50, got %v", order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Product p1" || order.Items[0].Price != 12.50 {
		t.Errorf("item snapshot wrong: %+v", order.Items)
	}
	if got := productStock(t, st, "p1"); got != 7 {
		t.Errorf("expected stock 7 after reservation, got %d", got)
	}
	if len(result.Reserved) != 1 || result.Reserved[0].NewStock != 7 {
		t.Errorf("unexpected reserved changes: %+v", result.Reserved)
	}

	// Pharmacy is notified of the new order.
	if len(notifier.inputs) != 1 || notifier.inputs[0].UserID != "ph1" || notifier.inputs[0].Type != domain.NotificationOrderCreated {
		t.Errorf("unexpected notifications: %+v", notifier.inputs)
	}
}

func TestOrderService_Create_OrderNumberFormat(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))

	result, err := svc.Create(context.Background(), orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pattern := regexp.MustCompile(`^ORD\d{6}[0-9A-F]{4}$`)
	if !pattern.MatchString(result.Order.OrderNumber) {
		t.Errorf("order number %q does not match expected format", result.Order.OrderNumber)
	}
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	svc, st, _, notifier := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 2))

	_, err := svc.Create(context.Background(), orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 5}))
	var se *domain.StockError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.StockError, got %v", err)
	}

	// No order, no stock movement, no notification.
	if got := productStock(t, st, "p1"); got != 2 {
		t.Errorf("stock must be untouched, got %d", got)
	}
	if orders, _ := svc.ListByCustomer(context.Background(), "cust1"); len(orders) != 0 {
		t.Errorf("no order should exist, got %d", len(orders))
	}
	if len(notifier.inputs) != 0 {
		t.Errorf("no notification should be sent, got %+v", notifier.inputs)
	}
}

func TestOrderService_Create_ForeignProductRejected(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "other_pharmacy", 10, 10))

	_, err := svc.Create(context.Background(), orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := productStock(t, st, "p1"); got != 10 {
		t.Errorf("stock must be untouched, got %d", got)
	}
}

func TestOrderService_Create_ValidatesItems(t *testing.T) {
	svc, _, _, _ := newOrderService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, orderInput()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty items: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 0})); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero quantity: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, orderInput(ports.OrderItemInput{Quantity: 1})); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing product_id: expected ErrValidation, got %v", err)
	}
}

func TestOrderService_Create_CompensatesOnPersistFailure(t *testing.T) {
	svc, st, backend, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))

	// Product writes succeed, order writes fail: the reservation must be
	// rolled back before the error surfaces.
	backend.setErr["pharmarun:orders"] = errors.New("disk full")

	_, err := svc.Create(context.Background(), orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 4}))
	if err == nil {
		t.Fatal("expected error when order persist fails")
	}
	if got := productStock(t, st, "p1"); got != 10 {
		t.Errorf("reservation must be compensated, stock is %d", got)
	}
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

func TestOrderService_UpdateStatus_HappyPath(t *testing.T) {
	svc, st, _, notifier := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))
	id := created.Order.ID

	steps := []domain.OrderStatus{
		domain.StatusAccepted, domain.StatusPreparing, domain.StatusReady,
		domain.StatusPickedUp, domain.StatusOutForDelivery, domain.StatusDelivered,
	}
	for _, status := range steps {
		in := ports.UpdateStatusInput{OrderID: id, Status: status}
		if status == domain.StatusPickedUp {
			in.RiderID = "rider1"
		}
		result, err := svc.UpdateStatus(ctx, in)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if result.Order.Status != status {
			t.Fatalf("expected %s, got %s", status, result.Order.Status)
		}
	}

	final, _ := svc.Get(ctx, id)
	if final.RiderID != "rider1" {
		t.Errorf("rider assignment lost: %q", final.RiderID)
	}
	if final.AcceptedAt == nil || final.PickedUpAt == nil || final.DeliveredAt == nil {
		t.Error("transition timestamps missing")
	}
	// Delivery never releases the reservation; the stock is genuinely gone.
	if got := productStock(t, st, "p1"); got != 9 {
		t.Errorf("expected stock 9 after delivery, got %d", got)
	}

	// notifications: 1 to pharmacy on create + 6 status updates to customer.
	if len(notifier.inputs) != 7 {
		t.Errorf("expected 7 notifications, got %d", len(notifier.inputs))
	}
}

func TestOrderService_UpdateStatus_IllegalJumpRejected(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))

	_, err := svc.UpdateStatus(ctx, ports.UpdateStatusInput{OrderID: created.Order.ID, Status: domain.StatusDelivered})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !strings.Contains(err.Error(), "pending") || !strings.Contains(err.Error(), "delivered") {
		t.Errorf("error should name both states: %v", err)
	}

	// Order must be unchanged.
	got, _ := svc.Get(ctx, created.Order.ID)
	if got.Status != domain.StatusPending {
		t.Errorf("order mutated by rejected transition: %s", got.Status)
	}
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	svc, _, _, _ := newOrderService(t)

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: "ghost", Status: domain.StatusAccepted})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestOrderService_Cancel_ReleasesStock(t *testing.T) {
	svc, st, _, notifier := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 3}))
	if got := productStock(t, st, "p1"); got != 7 {
		t.Fatalf("expected stock 7 after create, got %d", got)
	}

	result, err := svc.Cancel(ctx, ports.CancelOrderInput{OrderID: created.Order.ID, Reason: "changed my mind"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := result.Order
	if o.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", o.Status)
	}
	if o.StockReserved || !o.StockReleased {
		t.Errorf("reservation flags wrong: reserved=%v released=%v", o.StockReserved, o.StockReleased)
	}
	if o.CancelledAt == nil || o.ReleasedAt == nil {
		t.Error("cancellation timestamps missing")
	}
	if o.CancellationReason != "changed my mind" {
		t.Errorf("reason not recorded: %q", o.CancellationReason)
	}
	if got := productStock(t, st, "p1"); got != 10 {
		t.Errorf("expected stock restored to 10, got %d", got)
	}

	// Customer and pharmacy are both told.
	cancelled := 0
	for _, n := range notifier.inputs {
		if n.Type == domain.NotificationOrderCancelled {
			cancelled++
		}
	}
	if cancelled != 2 {
		t.Errorf("expected 2 cancellation notifications, got %d", cancelled)
	}
}

func TestOrderService_Cancel_TerminalOrderRejected(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 3}))
	id := created.Order.ID
	for _, status := range []domain.OrderStatus{
		domain.StatusAccepted, domain.StatusPreparing, domain.StatusReady,
		domain.StatusPickedUp, domain.StatusOutForDelivery, domain.StatusDelivered,
	} {
		if _, err := svc.UpdateStatus(ctx, ports.UpdateStatusInput{OrderID: id, Status: status}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	_, err := svc.Cancel(ctx, ports.CancelOrderInput{OrderID: id})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// Rejected cancel must not touch stock or the order.
	if got := productStock(t, st, "p1"); got != 7 {
		t.Errorf("stock must be untouched, got %d", got)
	}
	got, _ := svc.Get(ctx, id)
	if got.Status != domain.StatusDelivered || got.CancelledAt != nil {
		t.Errorf("delivered order mutated: %+v", got)
	}
}

func TestOrderService_Cancel_SecondCancelRejected(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 3}))
	if _, err := svc.Cancel(ctx, ports.CancelOrderInput{OrderID: created.Order.ID}); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := svc.Cancel(ctx, ports.CancelOrderInput{OrderID: created.Order.ID})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double cancel, got %v", err)
	}
	// Stock must not be released twice.
	if got := productStock(t, st, "p1"); got != 10 {
		t.Errorf("double release detected, stock is %d", got)
	}
}

func TestOrderService_Cancel_MissingProductReportedAsIssue(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 3}))

	// The product disappears from the catalog before cancellation.
	seedProducts(t, st)

	result, err := svc.Cancel(ctx, ports.CancelOrderInput{OrderID: created.Order.ID})
	if err != nil {
		t.Fatalf("cancel must succeed despite missing product: %v", err)
	}
	if result.Order.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", result.Order.Status)
	}
	if len(result.ReleaseIssues) != 1 || result.ReleaseIssues[0].Reason != domain.StockIssueNotFound {
		t.Errorf("expected one not-found release issue, got %+v", result.ReleaseIssues)
	}
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

func TestOrderService_Checkout_SplitsPerPharmacy(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st,
		activeProduct("p1", "ph1", 10, 10),
		activeProduct("p2", "ph2", 20, 5),
	)
	ctx := context.Background()

	carts := NewCartService(st, discardLogger)
	if _, err := carts.AddItem(ctx, "cust1", "p1", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := carts.AddItem(ctx, "cust1", "p2", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}

	result, err := svc.Checkout(ctx, "cust1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 orders (one per pharmacy), got %d", len(result.Orders))
	}
	if result.Orders[0].PharmacyID != "ph1" || result.Orders[1].PharmacyID != "ph2" {
		t.Errorf("pharmacy grouping wrong: %s, %s", result.Orders[0].PharmacyID, result.Orders[1].PharmacyID)
	}
	if result.Orders[0].Total != 20 || result.Orders[1].Total != 20 {
		t.Errorf("totals wrong: %v, %v", result.Orders[0].Total, result.Orders[1].Total)
	}
	if got := productStock(t, st, "p1"); got != 8 {
		t.Errorf("expected p1 stock 8, got %d", got)
	}
	if got := productStock(t, st, "p2"); got != 4 {
		t.Errorf("expected p2 stock 4, got %d", got)
	}

	// Cart is cleared on success.
	cart, _ := carts.Get(ctx, "cust1")
	if len(cart.Items) != 0 {
		t.Errorf("cart must be empty after checkout, got %d items", len(cart.Items))
	}
}

func TestOrderService_Checkout_ShortfallLeavesEverything(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st,
		activeProduct("p1", "ph1", 10, 10),
		activeProduct("p2", "ph2", 20, 1),
	)
	ctx := context.Background()

	carts := NewCartService(st, discardLogger)
	_, _ = carts.AddItem(ctx, "cust1", "p1", 2)
	_, _ = carts.AddItem(ctx, "cust1", "p2", 1)
	// Bump p2 beyond stock.
	if _, err := carts.UpdateItem(ctx, "cust1", "p2", 3); err != nil {
		t.Fatalf("update item: %v", err)
	}

	_, err := svc.Checkout(ctx, "cust1")
	var se *domain.StockError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.StockError, got %v", err)
	}

	// Nothing moved: no orders, no stock change, cart intact.
	if orders, _ := svc.ListByCustomer(ctx, "cust1"); len(orders) != 0 {
		t.Errorf("no orders should exist, got %d", len(orders))
	}
	if got := productStock(t, st, "p1"); got != 10 {
		t.Errorf("p1 stock must be untouched, got %d", got)
	}
	cart, _ := carts.Get(ctx, "cust1")
	if len(cart.Items) != 2 {
		t.Errorf("cart must be intact, got %d items", len(cart.Items))
	}
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	svc, _, _, _ := newOrderService(t)

	_, err := svc.Checkout(context.Background(), "cust1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty cart, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func TestOrderService_GetByNumber(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st, activeProduct("p1", "ph1", 10, 10))
	ctx := context.Background()

	created, _ := svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))

	got, err := svc.GetByNumber(ctx, created.Order.OrderNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.Order.ID {
		t.Errorf("expected %s, got %s", created.Order.ID, got.ID)
	}

	if _, err := svc.GetByNumber(ctx, "ORD000000FFFF"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_ListIndexes(t *testing.T) {
	svc, st, _, _ := newOrderService(t)
	seedProducts(t, st,
		activeProduct("p1", "ph1", 10, 10),
		activeProduct("p2", "ph2", 10, 10),
	)
	ctx := context.Background()

	_, _ = svc.Create(ctx, orderInput(ports.OrderItemInput{ProductID: "p1", Quantity: 1}))
	_, _ = svc.Create(ctx, ports.CreateOrderInput{
		CustomerID: "cust2",
		PharmacyID: "ph2",
		Items:      []ports.OrderItemInput{{ProductID: "p2", Quantity: 1}},
	})

	byCustomer, _ := svc.ListByCustomer(ctx, "cust1")
	if len(byCustomer) != 1 {
		t.Errorf("expected 1 order for cust1, got %d", len(byCustomer))
	}
	byPharmacy, _ := svc.ListByPharmacy(ctx, "ph2")
	if len(byPharmacy) != 1 {
		t.Errorf("expected 1 order for ph2, got %d", len(byPharmacy))
	}
	pending, _ := svc.ListByStatus(ctx, domain.StatusPending)
	if len(pending) != 2 {
		t.Errorf("expected 2 pending orders, got %d", len(pending))
	}
}
