package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// transitionsByRole lists which target statuses each role may drive. The state
// machine itself still decides whether the transition is legal from the
// order's current status.
var transitionsByRole = map[domain.Role][]domain.OrderStatus{
	domain.RolePharmacy: {domain.StatusAccepted, domain.StatusPreparing, domain.StatusReady},
	domain.RoleRider:    {domain.StatusPickedUp, domain.StatusOutForDelivery, domain.StatusDelivered},
	domain.RoleAdmin: {
		domain.StatusAccepted, domain.StatusPreparing, domain.StatusReady,
		domain.StatusPickedUp, domain.StatusOutForDelivery, domain.StatusDelivered,
	},
}

// OrderHandler drives the order lifecycle over HTTP: placement, checkout,
// retrieval, status transitions and cancellation.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /v1/orders — places an order against one pharmacy.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateOrderInput{
		CustomerID: userID,
		PharmacyID: req.PharmacyID,
		Items:      toOrderItemInputs(req.Items),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createOrderResponse{
		Order:    toOrderResponse(result.Order),
		Reserved: toStockChangeResponses(result.Reserved),
	})
}

// Checkout handles POST /v1/orders/checkout — places the caller's whole cart,
// one order per pharmacy represented in it.
func (h *OrderHandler) Checkout(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.Checkout(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, checkoutResponse{
		Orders:   toOrderResponses(result.Orders),
		Reserved: toStockChangeResponses(result.Reserved),
	})
}

// List handles GET /v1/orders. The view depends on who is asking: customers
// and pharmacies see their own orders, riders and admins filter by ?status=.
func (h *OrderHandler) List(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var orders []domain.Order
	switch role {
	case domain.RoleCustomer:
		orders, err = h.service.ListByCustomer(ctx, userID)
	case domain.RolePharmacy:
		orders, err = h.service.ListByPharmacy(ctx, userID)
	case domain.RoleRider, domain.RoleAdmin:
		raw := c.QueryParam("status")
		if raw == "" {
			raw = string(domain.StatusReady)
		}
		var status domain.OrderStatus
		status, err = domain.ParseOrderStatus(raw)
		if err != nil {
			return err
		}
		orders, err = h.service.ListByStatus(ctx, status)
	default:
		return domain.ErrForbidden
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.checkView(c, order); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// GetByNumber handles GET /v1/orders/number/:order_number.
func (h *OrderHandler) GetByNumber(c echo.Context) error {
	order, err := h.service.GetByNumber(c.Request().Context(), c.Param("order_number"))
	if err != nil {
		return err
	}
	if err := h.checkView(c, order); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PATCH /v1/orders/:id/status — one state machine step.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return err
	}
	if !roleMayDrive(role, status) {
		return domain.ErrForbidden
	}

	order, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.checkActor(userID, role, order, status); err != nil {
		return err
	}

	in := ports.UpdateStatusInput{OrderID: order.ID, Status: status}
	if status == domain.StatusPickedUp && role == domain.RoleRider {
		in.RiderID = userID
	}

	result, err := h.service.UpdateStatus(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusUpdateResponse{
		Order:         toOrderResponse(result.Order),
		ReleaseIssues: toIssueMessages(result.ReleaseIssues),
	})
}

// Cancel handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req cancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	order, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	switch role {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		if order.CustomerID != userID {
			return domain.ErrForbidden
		}
	case domain.RolePharmacy:
		if order.PharmacyID != userID {
			return domain.ErrForbidden
		}
	default:
		return domain.ErrForbidden
	}

	result, err := h.service.Cancel(c.Request().Context(), ports.CancelOrderInput{
		OrderID: order.ID,
		Reason:  req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusUpdateResponse{
		Order:         toOrderResponse(result.Order),
		ReleaseIssues: toIssueMessages(result.ReleaseIssues),
	})
}

// checkView rejects callers with no stake in the order: the customer who
// placed it, the pharmacy fulfilling it, the rider carrying it, or an admin.
func (h *OrderHandler) checkView(c echo.Context, order *domain.Order) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	switch role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleCustomer:
		if order.CustomerID == userID {
			return nil
		}
	case domain.RolePharmacy:
		if order.PharmacyID == userID {
			return nil
		}
	case domain.RoleRider:
		// Unassigned orders stay visible so riders can claim ready ones.
		if order.RiderID == userID || order.RiderID == "" {
			return nil
		}
	}
	return domain.ErrForbidden
}

// checkActor enforces who may drive a given transition on a given order.
func (h *OrderHandler) checkActor(userID string, role domain.Role, order *domain.Order, status domain.OrderStatus) error {
	switch role {
	case domain.RoleAdmin:
		return nil
	case domain.RolePharmacy:
		if order.PharmacyID != userID {
			return domain.ErrForbidden
		}
	case domain.RoleRider:
		// picked_up claims the order; every later rider step requires the
		// claim to match.
		if status != domain.StatusPickedUp && order.RiderID != userID {
			return domain.ErrForbidden
		}
	}
	return nil
}

func roleMayDrive(role domain.Role, status domain.OrderStatus) bool {
	for _, s := range transitionsByRole[role] {
		if s == status {
			return true
		}
	}
	return false
}
