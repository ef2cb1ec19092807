package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// UserHandler serves the caller's own profile plus its address and
// payment-method sub-collections, and the admin-only account views.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /v1/me.
func (h *UserHandler) Me(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PATCH /v1/me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Update(c.Request().Context(), userID, ports.UpdateUserPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeactivateMe handles DELETE /v1/me — soft-deletes the caller's account.
func (h *UserHandler) DeactivateMe(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.Deactivate(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddAddress handles POST /v1/me/addresses.
func (h *UserHandler) AddAddress(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addr, err := h.service.AddAddress(c.Request().Context(), userID, toAddressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, addr)
}

// UpdateAddress handles PUT /v1/me/addresses/:address_id.
func (h *UserHandler) UpdateAddress(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addr, err := h.service.UpdateAddress(c.Request().Context(), userID, c.Param("address_id"), toAddressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addr)
}

// RemoveAddress handles DELETE /v1/me/addresses/:address_id.
func (h *UserHandler) RemoveAddress(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.RemoveAddress(c.Request().Context(), userID, c.Param("address_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddPaymentMethod handles POST /v1/me/payment-methods.
func (h *UserHandler) AddPaymentMethod(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req paymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pm, err := h.service.AddPaymentMethod(c.Request().Context(), userID, ports.PaymentMethodInput{
		Kind:      req.Kind,
		Label:     req.Label,
		LastFour:  req.LastFour,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pm)
}

// RemovePaymentMethod handles DELETE /v1/me/payment-methods/:payment_method_id.
func (h *UserHandler) RemovePaymentMethod(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.RemovePaymentMethod(c.Request().Context(), userID, c.Param("payment_method_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/users?role=<role> — admin only.
func (h *UserHandler) List(c echo.Context) error {
	role, err := domain.ParseRole(c.QueryParam("role"))
	if err != nil {
		return err
	}

	users, err := h.service.ListByRole(c.Request().Context(), role)
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/users/:id — admin only.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Deactivate handles DELETE /v1/users/:id — admin only.
func (h *UserHandler) Deactivate(c echo.Context) error {
	if err := h.service.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toAddressInput(req addressRequest) ports.AddressInput {
	return ports.AddressInput{
		Label:     req.Label,
		Street:    req.Street,
		City:      req.City,
		ZipCode:   req.ZipCode,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	}
}
