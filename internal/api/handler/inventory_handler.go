package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// InventoryHandler exposes the read-only availability check so clients can
// pre-validate a cart before committing to checkout.
type InventoryHandler struct {
	service ports.InventoryService
}

func NewInventoryHandler(service ports.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type stockRequestLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type checkStockRequest struct {
	Items []stockRequestLine `json:"items" validate:"required,min=1,dive"`
}

type checkStockResponse struct {
	Available bool     `json:"available"`
	Issues    []string `json:"issues,omitempty"`
}

// Check handles POST /v1/inventory/check. It never reserves anything; a
// positive answer is a snapshot, not a hold.
func (h *InventoryHandler) Check(c echo.Context) error {
	var req checkStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items := make([]ports.StockRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	check, err := h.service.CheckStockAvailability(c.Request().Context(), items)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkStockResponse{
		Available: check.Available,
		Issues:    check.Errors(),
	})
}
