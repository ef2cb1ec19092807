package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// AdminHandler exposes the snapshot export/import endpoints used for backups
// and seeding environments. Admin only.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// ExportSnapshot handles GET /v1/admin/snapshot.
func (h *AdminHandler) ExportSnapshot(c echo.Context) error {
	snap, err := h.store.Export(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// ImportSnapshot handles PUT /v1/admin/snapshot — overwrites every collection
// with the submitted snapshot.
func (h *AdminHandler) ImportSnapshot(c echo.Context) error {
	var snap store.Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.store.Import(c.Request().Context(), &snap); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
