package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// ProductHandler serves the public catalog plus the pharmacy-side management
// endpoints. Pharmacies only ever touch their own products; admins bypass the
// ownership check.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

type createProductRequest struct {
	PharmacyID  string  `json:"pharmacy_id"`
	Name        string  `json:"name"     validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"    validate:"required,gt=0"`
	Stock       int     `json:"stock"    validate:"gte=0"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	SKU         *string  `json:"sku"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// List handles GET /v1/products — the active catalog, optionally filtered by
// ?category=.
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if category := c.QueryParam("category"); category != "" {
		products, err := h.service.ListByCategory(ctx, category)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, products)
	}

	products, err := h.service.ListActive(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /v1/products/:id. Customers see active products only;
// pharmacy owners and admins also see soft-deleted ones.
func (h *ProductHandler) Get(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	product, err := h.service.Get(c.Request().Context(), c.Param("id"), true)
	if err != nil {
		return err
	}
	if !product.IsActive && role != domain.RoleAdmin && product.PharmacyID != userID {
		return domain.ErrProductNotFound
	}
	return c.JSON(http.StatusOK, product)
}

// ListMine handles GET /v1/products/mine — the calling pharmacy's full
// catalog, soft-deleted items included.
func (h *ProductHandler) ListMine(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	products, err := h.service.ListByPharmacy(c.Request().Context(), userID, true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Create handles POST /v1/products. A pharmacy always creates under its own
// id; only an admin may set pharmacy_id explicitly.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pharmacyID := userID
	if role == domain.RoleAdmin && req.PharmacyID != "" {
		pharmacyID = req.PharmacyID
	}

	product, err := h.service.Create(c.Request().Context(), ports.CreateProductInput{
		PharmacyID:  pharmacyID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// Update handles PATCH /v1/products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.checkOwnership(c, c.Param("id")); err != nil {
		return err
	}

	product, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /v1/products/:id — a soft delete.
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.checkOwnership(c, c.Param("id")); err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustStock handles POST /v1/products/:id/stock — a direct stock correction
// outside the reservation path.
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	var req adjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.checkOwnership(c, c.Param("id")); err != nil {
		return err
	}

	product, err := h.service.AdjustStock(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// checkOwnership rejects pharmacy callers touching another pharmacy's product.
func (h *ProductHandler) checkOwnership(c echo.Context, productID string) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return nil
	}

	product, err := h.service.Get(c.Request().Context(), productID, true)
	if err != nil {
		return err
	}
	if product.PharmacyID != userID {
		return domain.ErrForbidden
	}
	return nil
}
